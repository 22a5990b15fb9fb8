package dataset

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/beeswarm/pkg/errors"
)

// Columns names the fields of the source data that feed a plot.
type Columns struct {
	Category string `json:"category,omitempty" yaml:"category,omitempty" toml:"category,omitempty"`
	Value    string `json:"value" yaml:"value" toml:"value"`
	Hue      string `json:"hue,omitempty" yaml:"hue,omitempty" toml:"hue,omitempty"`
}

// Validate checks the column names.
func (c Columns) Validate() error {
	if err := errors.ValidateColumnName(c.Value); err != nil {
		return fmt.Errorf("value column: %w", err)
	}
	for name, col := range map[string]string{"category": c.Category, "hue": c.Hue} {
		if col == "" {
			continue
		}
		if err := errors.ValidateColumnName(col); err != nil {
			return fmt.Errorf("%s column: %w", name, err)
		}
	}
	return nil
}

// Observation is one data point.
type Observation struct {
	Category string  `json:"category" bson:"category"`
	Value    float64 `json:"value" bson:"value"`
	Hue      string  `json:"hue,omitempty" bson:"hue,omitempty"`
}

// Table is a set of observations read with a given column mapping.
type Table struct {
	Columns Columns       `json:"columns" bson:"columns"`
	Rows    []Observation `json:"rows" bson:"rows"`
	Dropped int           `json:"dropped,omitempty" bson:"dropped,omitempty"`
}

// Categories returns the distinct category labels in order of first
// appearance.
func (t *Table) Categories() []string {
	return levels(t.Rows, func(o Observation) string { return o.Category })
}

// Hues returns the distinct hue labels in order of first appearance, or nil
// when the table has no hue column.
func (t *Table) Hues() []string {
	if t.Columns.Hue == "" {
		return nil
	}
	return levels(t.Rows, func(o Observation) string { return o.Hue })
}

// NumericCategories parses every category label as a number. It fails on the
// first label that is not numeric.
func (t *Table) NumericCategories() (map[string]float64, error) {
	out := make(map[string]float64)
	for _, c := range t.Categories() {
		v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New(errors.ErrCodeInvalidDataset, "category %q is not numeric", c)
		}
		out[c] = v
	}
	return out, nil
}

// ValueRange returns the smallest and largest value. It returns (0, 0) for an
// empty table.
func (t *Table) ValueRange() (lo, hi float64) {
	if len(t.Rows) == 0 {
		return 0, 0
	}
	lo, hi = t.Rows[0].Value, t.Rows[0].Value
	for _, r := range t.Rows[1:] {
		lo = min(lo, r.Value)
		hi = max(hi, r.Value)
	}
	return lo, hi
}

func levels(rows []Observation, key func(Observation) string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range rows {
		k := key(r)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return slices.Clip(out)
}

func parseValue(raw string) (float64, bool, error) {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "na", "nan", "null", "none":
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	if math.IsNaN(v) {
		return 0, false, nil
	}
	if math.IsInf(v, 0) {
		return 0, false, fmt.Errorf("infinite value %q", raw)
	}
	return v, true, nil
}

func (t *Table) add(category, rawValue, hue string, line int) error {
	v, ok, err := parseValue(rawValue)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDataset, err, "row %d: column %q", line, t.Columns.Value)
	}
	if !ok {
		t.Dropped++
		return nil
	}
	if err := errors.ValidateLabel(category); err != nil {
		return fmt.Errorf("row %d: category: %w", line, err)
	}
	if err := errors.ValidateLabel(hue); err != nil {
		return fmt.Errorf("row %d: hue: %w", line, err)
	}
	t.Rows = append(t.Rows, Observation{Category: category, Value: v, Hue: hue})
	return nil
}
