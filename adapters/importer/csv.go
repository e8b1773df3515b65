package importer

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"neuromorph/domain/measurement"
)

var candidateDelimiters = []rune{',', ';', '\t'}

// CSVReader reads delimited text. A zero Delimiter is detected from the
// header line.
type CSVReader struct {
	Delimiter rune
}

// ReadTable reads the header and data rows of a delimited file
func (r CSVReader) ReadTable(ctx context.Context, path string, parameters []string) (*measurement.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	br := bufio.NewReader(file)
	delimiter := r.Delimiter
	if delimiter == 0 {
		delimiter, err = detectDelimiter(br)
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV header: %w", err)
		}
	}

	reader := csv.NewReader(br)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("CSV file is empty: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var records [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV file: %w", err)
		}
		records = append(records, record)
	}

	return measurement.BuildTable(filepath.Base(path), header, records, parameters)
}

// detectDelimiter picks the first candidate that splits the header line
// into more than one field, defaulting to comma.
func detectDelimiter(br *bufio.Reader) (rune, error) {
	line, err := peekLine(br)
	if err != nil {
		return 0, err
	}
	for _, d := range candidateDelimiters {
		reader := csv.NewReader(strings.NewReader(line))
		reader.Comma = d
		reader.LazyQuotes = true
		fields, err := reader.Read()
		if err == nil && len(fields) > 1 {
			return d, nil
		}
	}
	return ',', nil
}

func peekLine(br *bufio.Reader) (string, error) {
	buf, err := br.Peek(br.Size())
	if err != nil && err != io.EOF {
		return "", err
	}
	line := string(buf)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSuffix(line, "\r"), nil
}
