package pipeline

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/matzehuels/beeswarm/pkg/dataset"
	"github.com/matzehuels/beeswarm/pkg/errors"
)

var inlineReaders = map[string]func(io.Reader, dataset.Columns) (*dataset.Table, error){
	"csv":  dataset.ReadCSV,
	"tsv":  dataset.ReadTSV,
	"json": dataset.ReadJSON,
}

// Load reads the dataset named by opts: the inline Data when set, the Input
// file otherwise.
func Load(opts Options) (*dataset.Table, error) {
	if opts.Data != "" {
		read, ok := inlineReaders[opts.DataFormat]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid data_format: %q", opts.DataFormat)
		}
		return read(strings.NewReader(opts.Data), opts.Columns)
	}
	return dataset.ReadFile(opts.Input, opts.Columns)
}

// sourceFormat names the dataset format for metrics.
func sourceFormat(opts Options) string {
	if opts.Data != "" {
		return opts.DataFormat
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.Input)), ".")
}
