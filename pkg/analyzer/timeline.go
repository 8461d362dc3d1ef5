package analyzer

import (
	"sort"
	"strconv"
	"time"

	"github.com/ccollicutt/chatlens/pkg/parser"
)

type monthKey struct {
	year  int
	month int
}

// timelineCollector counts messages per calendar month and per day.
type timelineCollector struct {
	months map[monthKey]int
	days   map[string]int
}

func newTimelineCollector() *timelineCollector {
	return &timelineCollector{
		months: make(map[monthKey]int),
		days:   make(map[string]int),
	}
}

func (c *timelineCollector) Name() string { return "timeline" }

func (c *timelineCollector) Process(rec *parser.MessageRecord) {
	c.months[monthKey{year: rec.Year, month: rec.MonthNum}]++
	c.days[rec.Date]++
}

func (c *timelineCollector) Finalize(result *AnalysisResult) {
	keys := make([]monthKey, 0, len(c.months))
	for k := range c.months {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	result.Monthly = make([]MonthBucket, 0, len(keys))
	for _, k := range keys {
		name := time.Month(k.month).String()
		result.Monthly = append(result.Monthly, MonthBucket{
			Year:     k.year,
			MonthNum: k.month,
			Month:    name,
			Label:    name + "-" + strconv.Itoa(k.year),
			Count:    c.months[k],
		})
	}

	dates := make([]string, 0, len(c.days))
	for d := range c.days {
		dates = append(dates, d)
	}
	// YYYY-MM-DD sorts chronologically.
	sort.Strings(dates)

	result.Daily = make([]Count, 0, len(dates))
	for _, d := range dates {
		result.Daily = append(result.Daily, Count{Key: d, Count: c.days[d]})
	}
}

func (c *timelineCollector) Reset() {
	c.months = make(map[monthKey]int)
	c.days = make(map[string]int)
}

// weekdayOrder is the row order of the heatmap.
var weekdayOrder = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// activityCollector builds the weekday and month activity maps and the
// weekday by hour-bucket heatmap.
type activityCollector struct {
	weekdays *counter
	months   *counter
	cells    map[string]map[string]int
	hours    map[int]bool
}

func newActivityCollector() *activityCollector {
	return &activityCollector{
		weekdays: newCounter(),
		months:   newCounter(),
		cells:    make(map[string]map[string]int),
		hours:    make(map[int]bool),
	}
}

func (c *activityCollector) Name() string { return "activity" }

func (c *activityCollector) Process(rec *parser.MessageRecord) {
	c.weekdays.add(rec.DayName)
	c.months.add(rec.Month)

	row, ok := c.cells[rec.DayName]
	if !ok {
		row = make(map[string]int)
		c.cells[rec.DayName] = row
	}
	row[rec.Period]++
	c.hours[rec.Hour] = true
}

func (c *activityCollector) Finalize(result *AnalysisResult) {
	result.WeekActivity = c.weekdays.top(0)
	result.MonthActivity = c.months.top(0)

	heatmap := Heatmap{
		Days:    make([]string, 0, len(c.cells)),
		Periods: make([]string, 0, len(c.hours)),
		Cells:   c.cells,
	}
	for _, day := range weekdayOrder {
		if _, ok := c.cells[day]; ok {
			heatmap.Days = append(heatmap.Days, day)
		}
	}
	for hour := 0; hour < 24; hour++ {
		if c.hours[hour] {
			heatmap.Periods = append(heatmap.Periods, parser.PeriodLabel(hour))
		}
	}
	result.Heatmap = heatmap
}

func (c *activityCollector) Reset() {
	c.weekdays.reset()
	c.months.reset()
	c.cells = make(map[string]map[string]int)
	c.hours = make(map[int]bool)
}
