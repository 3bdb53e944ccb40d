package bulkload

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var (
	errEmptyFile       = errors.New("csv: file is empty")
	errInvalidEncoding = errors.New("csv: file is not valid UTF-8")
	errMissingHeader   = errors.New("csv: missing header row")
)

// rowReader wraps encoding/csv with BOM stripping, UTF-8 validation and a
// header map, so callers work with column names instead of indexes.
type rowReader struct {
	reader  *csv.Reader
	headers []string
}

func newRowReader(r io.Reader) (*rowReader, error) {
	buf := bufio.NewReader(r)

	// UTF-8 BOM: 0xEF, 0xBB, 0xBF
	peek, err := buf.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("csv: read: %w", err)
	}
	if len(peek) >= 3 && peek[0] == 0xEF && peek[1] == 0xBB && peek[2] == 0xBF {
		_, _ = buf.Discard(3)
	}

	if err := validateUTF8(buf); err != nil {
		return nil, err
	}

	cr := csv.NewReader(buf)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	return &rowReader{reader: cr, headers: header}, nil
}

func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("csv: read for encoding validation: %w", err)
	}
	if len(content) == 0 {
		return errEmptyFile
	}
	// a peek may end mid-rune; trim incomplete trailing bytes before checking
	for len(content) > 0 && len(content) == checkSize {
		r, _ := utf8.DecodeLastRune(content)
		if r != utf8.RuneError {
			break
		}
		content = content[:len(content)-1]
	}
	if !utf8.Valid(content) {
		return errInvalidEncoding
	}
	return nil
}

// readAll returns all data rows keyed by header name, skipping rows with no
// non-empty values.
func (r *rowReader) readAll() ([]map[string]string, error) {
	var rows []map[string]string
	for {
		record, err := r.reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, fmt.Errorf("csv: read row: %w", err)
		}

		row := make(map[string]string, len(r.headers))
		empty := true
		for i, h := range r.headers {
			if i < len(record) {
				row[h] = record[i]
				if record[i] != "" {
					empty = false
				}
			} else {
				row[h] = ""
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
}
