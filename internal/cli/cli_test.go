package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beeswarm/pkg/dataset"
	"github.com/matzehuels/beeswarm/pkg/pipeline"
)

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/xdg", "beeswarm"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", home)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(home, ".cache", "beeswarm"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"svg", []string{"svg"}},
		{"svg,png,json", []string{"svg", "png", "json"}},
		{" SVG , Png", []string{"svg", "png"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := map[string]string{
		"tips.csv":              "tips",
		"data/tips.layout.json": "data/tips",
		"tips.json":             "tips",
		"noext":                 "noext",
	}
	for in, want := range tests {
		if got := basePath(in); got != want {
			t.Errorf("basePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		output   string
		format   string
		nFormats int
		want     string
	}{
		{"derived svg", "tips.csv", "", "svg", 1, "tips.svg"},
		{"derived json", "tips.csv", "", "json", 2, "tips.layout.json"},
		{"explicit single", "tips.csv", "out/plot.svg", "svg", 1, "out/plot.svg"},
		{"explicit base", "tips.csv", "out/plot", "png", 2, "out/plot.png"},
		{"explicit base with format ext", "tips.csv", "out/plot.svg", "png", 2, "out/plot.png"},
		{"from layout file", "tips.layout.json", "", "png", 1, "tips.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.input, tt.output, tt.format, tt.nFormats); got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrepareOptionsLayersConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "plot.toml")
	data := `
[columns]
category = "day"
value = "total_bill"

[figure]
width = 640

[overflow]
policy = "shrink"
`
	if err := os.WriteFile(cfg, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	c := New(&bytes.Buffer{}, log.InfoLevel)
	c.configPath = cfg
	opts := pipeline.Options{Input: "tips.csv", Width: 1024}
	if err := c.prepareOptions(&opts); err != nil {
		t.Fatalf("prepareOptions: %v", err)
	}

	if opts.Columns.Value != "total_bill" || opts.Columns.Category != "day" {
		t.Errorf("columns = %+v, want day/total_bill from config", opts.Columns)
	}
	if opts.Width != 1024 {
		t.Errorf("Width = %v, explicit flag should win over config", opts.Width)
	}
	if opts.Overflow != "shrink" {
		t.Errorf("Overflow = %q, want shrink from config", opts.Overflow)
	}
	if opts.Height != pipeline.DefaultHeight {
		t.Errorf("Height = %v, want default %v", opts.Height, pipeline.DefaultHeight)
	}
	if opts.Logger != c.Logger {
		t.Error("prepareOptions should attach the CLI logger")
	}
}

func TestPrepareOptionsMissingConfig(t *testing.T) {
	c := New(&bytes.Buffer{}, log.InfoLevel)
	c.configPath = filepath.Join(t.TempDir(), "missing.yaml")
	opts := pipeline.Options{Input: "tips.csv", Columns: dataset.Columns{Value: "v"}}
	if err := c.prepareOptions(&opts); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestNewCacheNoCache(t *testing.T) {
	cc, err := newCache(true)
	if err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := cc.Get(t.Context(), "anything"); hit {
		t.Error("no-cache backend should never hit")
	}
}

func TestServerCacheDefaultsToFile(t *testing.T) {
	t.Setenv(envRedisURL, "")
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	cc, keyer, err := serverCache(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	defer cc.Close()
	if keyer != nil {
		t.Error("file cache should use the default keyer")
	}
}
