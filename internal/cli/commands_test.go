package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/beeswarm/pkg/buildinfo"
	apperrors "github.com/matzehuels/beeswarm/pkg/errors"
	"github.com/matzehuels/beeswarm/pkg/plot"
	"github.com/matzehuels/beeswarm/pkg/swarm"
)

const tipsCSV = "total_bill,day,sex\n" +
	"16.99,Sun,Female\n10.34,Sun,Male\n21.01,Sun,Male\n23.68,Sun,Male\n24.59,Sun,Female\n" +
	"20.65,Sat,Male\n17.92,Sat,Male\n20.29,Sat,Female\n15.77,Sat,Male\n" +
	"27.20,Thur,Male\n22.76,Thur,Male\n"

// setupWorkspace writes the tips dataset into a temporary directory, points
// the cache there and returns the dataset path.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	path := filepath.Join(dir, "tips.csv")
	if err := os.WriteFile(path, []byte(tipsCSV), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCLI executes the root command with args and returns everything it
// printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	prev := stdout
	stdout = &out
	defer func() { stdout = prev }()

	c := New(&out, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLayoutCommand(t *testing.T) {
	input := setupWorkspace(t)

	out, err := runCLI(t, "layout", input, "-x", "day", "-y", "total_bill")
	if err != nil {
		t.Fatalf("layout: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Layout complete") || !strings.Contains(out, "fresh") {
		t.Errorf("unexpected output:\n%s", out)
	}

	layoutPath := strings.TrimSuffix(input, ".csv") + ".layout.json"
	l, err := plot.ReadFile(layoutPath)
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	if len(l.Lanes) != 3 {
		t.Errorf("lanes = %d, want 3", len(l.Lanes))
	}
	if l.PointCount() != 11 {
		t.Errorf("points = %d, want 11", l.PointCount())
	}

	out, err = runCLI(t, "layout", input, "-x", "day", "-y", "total_bill")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "cached") {
		t.Errorf("second run should hit the cache:\n%s", out)
	}
}

func TestLayoutCommandWarnsOnOverflow(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	input := filepath.Join(dir, "crowded.csv")
	data := "c,v\n" + strings.Repeat("only,1\n", 300)
	if err := os.WriteFile(input, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "layout", input, "-x", "c", "-y", "v", "--no-cache")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if !strings.Contains(out, "only: ") || !strings.Contains(out, "cannot be placed as swarm") {
		t.Errorf("expected an overflow warning for lane only:\n%s", out)
	}
}

func TestRenderCommandFormats(t *testing.T) {
	input := setupWorkspace(t)
	base := strings.TrimSuffix(input, ".csv")

	out, err := runCLI(t, "render", input, "-x", "day", "-y", "total_bill", "--hue", "sex", "-f", "svg,png,json", "--title", "Tips")
	if err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}

	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("Tips")) {
		t.Errorf("svg output looks wrong: %.80s", svg)
	}
	png, err := os.ReadFile(base + ".png")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("png output lacks the PNG signature")
	}
	if _, err := plot.ReadFile(base + ".layout.json"); err != nil {
		t.Errorf("json output should read back as a layout: %v", err)
	}
}

func TestRenderLayoutFile(t *testing.T) {
	input := setupWorkspace(t)
	if _, err := runCLI(t, "layout", input, "-x", "day", "-y", "total_bill"); err != nil {
		t.Fatal(err)
	}
	layoutPath := strings.TrimSuffix(input, ".csv") + ".layout.json"
	output := filepath.Join(filepath.Dir(input), "out.png")

	if _, err := runCLI(t, "render", layoutPath, "-f", "png", "-o", output, "--scale", "2"); err != nil {
		t.Fatalf("render layout: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Error("png output lacks the PNG signature")
	}
}

func TestRenderRefusesToOverwriteInput(t *testing.T) {
	input := setupWorkspace(t)
	if _, err := runCLI(t, "layout", input, "-x", "day", "-y", "total_bill"); err != nil {
		t.Fatal(err)
	}
	layoutPath := strings.TrimSuffix(input, ".csv") + ".layout.json"

	_, err := runCLI(t, "render", layoutPath, "-f", "json")
	if !apperrors.Is(err, apperrors.ErrCodeInvalidPath) {
		t.Errorf("err = %v, want INVALID_PATH", err)
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(error) bool
	}{
		{"bogus policy", []string{"-y", "total_bill", "--overflow", "bogus"}, func(err error) bool { return errors.Is(err, swarm.ErrConfiguration) }},
		{"missing value column", nil, func(err error) bool { return err != nil }},
		{"unknown column", []string{"-y", "tip"}, func(err error) bool { return apperrors.Is(err, apperrors.ErrCodeInvalidDataset) }},
		{"bad format", []string{"-y", "total_bill", "-f", "pdf"}, func(err error) bool { return apperrors.Is(err, apperrors.ErrCodeInvalidFormat) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := setupWorkspace(t)
			_, err := runCLI(t, append([]string{"render", input}, tt.args...)...)
			if !tt.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestRenderMissingLayoutFile(t *testing.T) {
	_, err := runCLI(t, "render", filepath.Join(t.TempDir(), "nope.layout.json"))
	if !apperrors.Is(err, apperrors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestConfigFlag(t *testing.T) {
	input := setupWorkspace(t)
	cfg := filepath.Join(filepath.Dir(input), "plot.yaml")
	data := "columns:\n  category: day\n  value: total_bill\noverflow:\n  policy: shrink\n"
	if err := os.WriteFile(cfg, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, "--config", cfg, "layout", input); err != nil {
		t.Fatalf("layout with config: %v", err)
	}
	l, err := plot.ReadFile(strings.TrimSuffix(input, ".csv") + ".layout.json")
	if err != nil {
		t.Fatal(err)
	}
	if l.Overflow != "shrink" {
		t.Errorf("Overflow = %q, want shrink from config", l.Overflow)
	}
}

func TestInspectPlain(t *testing.T) {
	input := setupWorkspace(t)
	out, err := runCLI(t, "inspect", input, "-x", "day", "-y", "total_bill", "--plain")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"Lane", "Points", "Sun", "Sat", "Thur"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestCacheCommands(t *testing.T) {
	input := setupWorkspace(t)
	dir := filepath.Join(filepath.Dir(input), "cache", "beeswarm")

	out, err := runCLI(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), dir)
	}

	out, err = runCLI(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("clear on a fresh cache: %q", out)
	}

	if _, err := runCLI(t, "render", input, "-x", "day", "-y", "total_bill"); err != nil {
		t.Fatal(err)
	}
	out, err = runCLI(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 2 cached entries") {
		t.Errorf("expected one layout and one artifact entry:\n%s", out)
	}
	if n := countEntries(dir); n != 0 {
		t.Errorf("%d entries left after clear", n)
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := runCLI(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, buildinfo.Version) {
		t.Errorf("version output %q missing %q", out, buildinfo.Version)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := runCLI(t, "completion", shell)
		if err != nil {
			t.Fatalf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out, "beeswarm") {
			t.Errorf("completion %s output does not mention beeswarm", shell)
		}
	}
	if _, err := runCLI(t, "completion", "tcsh"); err == nil {
		t.Error("expected an error for an unsupported shell")
	}
}

func TestRootRegistersCommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	want := []string{"cache", "completion", "inspect", "layout", "render", "serve"}
	var got []string
	for _, cmd := range root.Commands() {
		got = append(got, cmd.Name())
	}
	for _, name := range want {
		found := false
		for _, g := range got {
			found = found || g == name
		}
		if !found {
			t.Errorf("root is missing the %s command (have %v)", name, got)
		}
	}
}
