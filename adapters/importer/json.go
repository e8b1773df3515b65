package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"neuromorph/domain/measurement"
)

// JSONReader reads {"measurements": [...]}, a bare array of objects, or a
// single object.
type JSONReader struct{}

// ReadTable decodes measurement objects, keeping key order from the file
func (JSONReader) ReadTable(ctx context.Context, path string, parameters []string) (*measurement.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	objects, err := extractMeasurements(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("no measurements found in JSON file: %s", path)
	}

	index := make(map[string]int)
	var header []string
	decoded := make([][]field, len(objects))
	for i, raw := range objects {
		fields, err := decodeObject(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse measurement %d in %s: %w", i, filepath.Base(path), err)
		}
		decoded[i] = fields
		for _, f := range fields {
			if _, ok := index[f.key]; !ok {
				index[f.key] = len(header)
				header = append(header, f.key)
			}
		}
	}

	records := make([][]string, len(decoded))
	for i, fields := range decoded {
		record := make([]string, len(header))
		for _, f := range fields {
			record[index[f.key]] = f.value
		}
		records[i] = record
	}
	return measurement.BuildTable(filepath.Base(path), header, records, parameters)
}

func extractMeasurements(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	case '{':
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, err
		}
		if inner, ok := wrapper["measurements"]; ok {
			var list []json.RawMessage
			if err := json.Unmarshal(inner, &list); err != nil {
				return nil, fmt.Errorf("measurements must be an array: %w", err)
			}
			return list, nil
		}
		return []json.RawMessage{json.RawMessage(trimmed)}, nil
	default:
		return nil, fmt.Errorf("expected a JSON object or array")
	}
}

type field struct {
	key   string
	value string
}

// decodeObject walks one object's tokens so columns keep file order.
// Numbers and numeric strings become cells; other values are blank.
func decodeObject(raw json.RawMessage) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("measurement is not an object")
	}

	var fields []field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}
		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		cell := ""
		switch v := value.(type) {
		case json.Number:
			cell = v.String()
		case string:
			cell = v
		case bool:
			cell = strconv.FormatBool(v)
		}
		fields = append(fields, field{key: key, value: cell})
	}
	return fields, nil
}
