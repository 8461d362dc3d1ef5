package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// MaxExportSize caps how many decompressed bytes are read from one export.
const MaxExportSize = 256 * 1024 * 1024

// ErrNoChatInArchive is returned when a zip export contains no .txt file.
var ErrNoChatInArchive = errors.New("archive contains no chat text file")

// ErrExportTooLarge is returned when an export exceeds MaxExportSize.
var ErrExportTooLarge = errors.New("export exceeds maximum size")

// ReadExport loads the chat text from an export file.
// Plain text, .zip (as exported by phones), .gz and .zst are supported.
// A UTF-8 byte order mark is dropped, CRLF line endings become LF and
// invalid UTF-8 is replaced with U+FFFD.
func ReadExport(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		data, err = readZip(path)
	case ".gz":
		data, err = readCompressed(path, func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		})
	case ".zst", ".zstd":
		data, err = readCompressed(path, func(r io.Reader) (io.ReadCloser, error) {
			dec, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return dec.IOReadCloser(), nil
		})
	default:
		data, err = readPlain(path)
	}
	if err != nil {
		return "", err
	}

	return decodeText(data), nil
}

func readPlain(path string) ([]byte, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("opening export %s: %w", path, err)
	}
	defer f.Close()

	return readLimited(f, path)
}

func readCompressed(path string, open func(io.Reader) (io.ReadCloser, error)) ([]byte, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("opening export %s: %w", path, err)
	}
	defer f.Close()

	r, err := open(f)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", path, err)
	}
	defer r.Close()

	return readLimited(r, path)
}

func readZip(path string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	defer zr.Close()

	entry := chatEntry(zr.File)
	if entry == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoChatInArchive)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s in %s: %w", entry.Name, path, err)
	}
	defer rc.Close()

	return readLimited(rc, path+":"+entry.Name)
}

// chatEntry picks the chat transcript out of an export archive. Phone
// exports name it "_chat.txt" or "<App> Chat with <name>.txt" next to the
// media files; failing that, the first .txt in name order is used.
func chatEntry(files []*zip.File) *zip.File {
	var candidates []*zip.File
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		if strings.EqualFold(path.Ext(f.Name), ".txt") {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Name < candidates[j].Name
	})
	for _, f := range candidates {
		base := strings.ToLower(path.Base(f.Name))
		if base == "_chat.txt" || strings.Contains(base, "chat with") {
			return f
		}
	}
	return candidates[0]
}

func readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxExportSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(data) > MaxExportSize {
		return nil, fmt.Errorf("%s: %w (%d bytes)", name, ErrExportTooLarge, MaxExportSize)
	}
	return data, nil
}

func decodeText(data []byte) string {
	s := strings.TrimPrefix(string(data), "\ufeff")
	s = strings.ToValidUTF8(s, "\ufffd")
	return strings.ReplaceAll(s, "\r\n", "\n")
}
