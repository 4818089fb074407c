package sheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

var (
	// ErrSourceUnavailable means the sheet export could not be fetched at
	// all. Fatal for the ingestion run; no partial rows are returned.
	ErrSourceUnavailable = errors.New("sheet source unavailable")

	// ErrParse means the fetched content could not be tokenized as
	// delimited text.
	ErrParse = errors.New("sheet parse failed")

	// ErrHeaderNotFound means no row matched any configured layout's
	// header labels. Fatal: parsing under the wrong layout would produce
	// semantically wrong records, so nothing is returned.
	ErrHeaderNotFound = errors.New("sheet header row not found")
)

// Reader fetches a delimited-text export (Google Sheets CSV export or a
// local file) and parses it into rows. Empty cells are preserved as empty
// strings: downstream parsing is positional and depends on index
// alignment, so cells are never omitted.
type Reader struct {
	Client *http.Client

	// SkipBlank drops rows whose every cell is empty. The normalizer
	// wants this off (it drops empty-title rows itself); header-mode
	// consumers usually want it on.
	SkipBlank bool
}

func NewReader() *Reader {
	return &Reader{
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Fetch downloads and parses the resource in raw mode: an ordered slice
// of rows with no header interpretation. Rows may have differing lengths.
func (r *Reader) Fetch(ctx context.Context, locator string) ([][]string, error) {
	data, err := r.read(ctx, locator)
	if err != nil {
		return nil, err
	}

	if !r.SkipBlank {
		data = keepBlankLines(data)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	if r.SkipBlank {
		rows = dropBlankRows(rows)
	}
	return rows, nil
}

// FetchHeader downloads and parses the resource in header mode: the first
// row supplies the keys, every later row becomes a map. Cells beyond a
// short row read back as "".
func (r *Reader) FetchHeader(ctx context.Context, locator string) ([]map[string]string, error) {
	rows, err := r.Fetch(ctx, locator)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty source", ErrParse)
	}

	labels := make([]string, len(rows[0]))
	for i, l := range rows[0] {
		labels[i] = strings.TrimSpace(l)
	}

	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		m := make(map[string]string, len(labels))
		for i, label := range labels {
			if label == "" {
				continue
			}
			if i < len(row) {
				m[label] = row[i]
			} else {
				m[label] = ""
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *Reader) read(ctx context.Context, locator string) ([]byte, error) {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return r.download(ctx, locator)
	}

	b, err := os.ReadFile(locator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return b, nil
}

func (r *Reader) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrSourceUnavailable, err)
	}

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrSourceUnavailable, err)
	}
	return b, nil
}

// keepBlankLines rewrites fully blank lines as a single quoted empty
// field so encoding/csv emits a row for them instead of silently
// skipping. Lines inside a quoted field are left alone (tracked by quote
// parity).
func keepBlankLines(data []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(data) + 16)

	inQuotes := false
	start := 0
	for i := 0; i <= len(data); i++ {
		if i < len(data) && data[i] != '\n' {
			if data[i] == '"' {
				inQuotes = !inQuotes
			}
			continue
		}

		line := data[start:i]
		if !inQuotes && len(bytes.TrimRight(line, "\r")) == 0 && i < len(data) {
			out.WriteString(`""`)
		}
		out.Write(line)
		if i < len(data) {
			out.WriteByte('\n')
		}
		start = i + 1
	}
	return out.Bytes()
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		blank := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, row)
		}
	}
	return out
}
