package grants

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

var ErrMalformedCSV = errors.New("malformed csv")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadRows reads a whole CSV export. The first record is the header.
//
// Rows may be shorter or longer than the header; cells without a header are dropped.
func ReadRows(r io.Reader) ([]Row, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: no header row", ErrMalformedCSV)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %s", ErrMalformedCSV, err)
	}

	rows := []Row{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedCSV, err)
		}

		row := make(Row, len(header))
		for i, h := range header {
			if i >= len(record) {
				break
			}
			row[h] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}
