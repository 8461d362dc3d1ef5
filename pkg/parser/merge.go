package parser

import "container/heap"

// Merge combines the records of several exports into one timeline ordered
// by timestamp (oldest first). Each input keeps its own relative order, even
// where its timestamps go backwards; ties across inputs go to the earlier
// argument.
func Merge(sources ...[]MessageRecord) []MessageRecord {
	total := 0
	for _, src := range sources {
		total += len(src)
	}
	out := make([]MessageRecord, 0, total)

	h := &recordHeap{}
	for i, src := range sources {
		if len(src) > 0 {
			*h = append(*h, &heapItem{rec: &src[0], sourceIdx: i})
		}
	}
	heap.Init(h)

	for h.Len() > 0 {
		// Pop the oldest head
		item := heap.Pop(h).(*heapItem)
		src := sources[item.sourceIdx]
		out = append(out, src[item.pos])

		// Refill from the same source
		if item.pos+1 < len(src) {
			item.pos++
			item.rec = &src[item.pos]
			heap.Push(h, item)
		}
	}

	return out
}

// heapItem is the current head of one source.
type heapItem struct {
	rec       *MessageRecord
	sourceIdx int
	pos       int
}

// recordHeap implements heap.Interface for timestamp-ordered merging.
type recordHeap []*heapItem

func (h recordHeap) Len() int { return len(h) }

func (h recordHeap) Less(i, j int) bool {
	ti, tj := h[i].rec.Time, h[j].rec.Time
	if ti.Equal(tj) {
		return h[i].sourceIdx < h[j].sourceIdx
	}
	return ti.Before(tj)
}

func (h recordHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *recordHeap) Push(x interface{}) {
	*h = append(*h, x.(*heapItem))
}

func (h *recordHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}
