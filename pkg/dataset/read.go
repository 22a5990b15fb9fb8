package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/beeswarm/pkg/errors"
)

// ReadCSV decodes comma-separated records with a header row from r.
// ReadCSV does not close r.
func ReadCSV(r io.Reader, cols Columns) (*Table, error) {
	return readDelimited(r, cols, ',')
}

// ReadTSV is [ReadCSV] for tab-separated input.
func ReadTSV(r io.Reader, cols Columns) (*Table, error) {
	return readDelimited(r, cols, '\t')
}

func readDelimited(r io.Reader, cols Columns, comma rune) (*Table, error) {
	if err := cols.Validate(); err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.TrimLeadingSpace = comma == ','
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidDataset, "empty input: missing header row")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "read header")
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	lookup := func(name string) (int, error) {
		if name == "" {
			return -1, nil
		}
		i, ok := index[name]
		if !ok {
			return 0, errors.New(errors.ErrCodeInvalidDataset, "column %q not found (have %s)", name, strings.Join(header, ", "))
		}
		return i, nil
	}

	vi, err := lookup(cols.Value)
	if err != nil {
		return nil, err
	}
	ci, err := lookup(cols.Category)
	if err != nil {
		return nil, err
	}
	hi, err := lookup(cols.Hue)
	if err != nil {
		return nil, err
	}

	t := &Table{Columns: cols}
	field := func(rec []string, i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return rec[i]
	}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "read row %d", line)
		}
		if err := t.add(field(rec, ci), field(rec, vi), field(rec, hi), line); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ReadJSON decodes a JSON array of objects from r. Values may be JSON numbers
// or numeric strings; category and hue fields may be strings, numbers or
// booleans. ReadJSON does not close r.
func ReadJSON(r io.Reader, cols Columns) (*Table, error) {
	if err := cols.Validate(); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode")
	}

	t := &Table{Columns: cols}
	for i, rec := range records {
		row := i + 1
		raw, ok := rec[cols.Value]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidDataset, "record %d: missing field %q", row, cols.Value)
		}
		value, err := scalar(raw)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "record %d: field %q", row, cols.Value)
		}
		var category, hue string
		if cols.Category != "" {
			if category, err = scalar(rec[cols.Category]); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "record %d: field %q", row, cols.Category)
			}
		}
		if cols.Hue != "" {
			if hue, err = scalar(rec[cols.Hue]); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidDataset, err, "record %d: field %q", row, cols.Hue)
			}
		}
		if err := t.add(category, value, hue, row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func scalar(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return "", fmt.Errorf("unsupported %T value", v)
	}
}

// ReadFile reads a dataset from path, choosing the decoder by extension:
// .csv, .tsv/.tab or .json.
func ReadFile(path string, cols Columns) (*Table, error) {
	var read func(io.Reader, Columns) (*Table, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		read = ReadCSV
	case ".tsv", ".tab":
		read = ReadTSV
	case ".json":
		read = ReadJSON
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset extension %q (use .csv, .tsv or .json)", filepath.Ext(path))
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := read(f, cols)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
