package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"SalesCast/internal/domain/models"
)

// Frame is a delimited table held fully in memory: a header and string
// records of the same width.
type Frame struct {
	Header  []string
	Records [][]string
}

// ReadFrame reads a comma separated table with a header row. Empty input,
// binary content, a blank or duplicated header name, or rows of a different
// width are reported as models.ErrMalformed.
func ReadFrame(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no header row", models.ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformed, err)
	}
	if err := checkText(header, 1); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, fmt.Errorf("%w: blank header at column %d", models.ErrMalformed, i+1)
		}
		if _, dup := seen[h]; dup {
			return nil, fmt.Errorf("%w: duplicate header %q", models.ErrMalformed, h)
		}
		seen[h] = struct{}{}
		header[i] = h
	}

	f := &Frame{Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrMalformed, err)
		}
		if err := checkText(rec, len(f.Records)+2); err != nil {
			return nil, err
		}
		f.Records = append(f.Records, rec)
	}
	return f, nil
}

// checkText rejects cells that are not UTF-8 text or carry NUL bytes.
func checkText(cells []string, line int) error {
	for _, c := range cells {
		if !utf8.ValidString(c) || strings.IndexByte(c, 0) >= 0 {
			return fmt.Errorf("%w: binary content on line %d", models.ErrMalformed, line)
		}
	}
	return nil
}

// Len returns the number of data rows.
func (f *Frame) Len() int { return len(f.Records) }

// Index returns the position of column name or -1.
func (f *Frame) Index(name string) int {
	for i, h := range f.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns the cells of column name.
func (f *Frame) Column(name string) ([]string, bool) {
	i := f.Index(name)
	if i < 0 {
		return nil, false
	}
	out := make([]string, len(f.Records))
	for r, rec := range f.Records {
		out[r] = rec[i]
	}
	return out, true
}

// Head returns up to n leading records.
func (f *Frame) Head(n int) [][]string {
	if n > len(f.Records) {
		n = len(f.Records)
	}
	if n < 0 {
		n = 0
	}
	return f.Records[:n]
}

// WriteFrame writes the header and records back as CSV.
func WriteFrame(w io.Writer, f *Frame) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(f.Records); err != nil {
		return err
	}
	return cw.Error()
}
