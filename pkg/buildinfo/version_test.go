package buildinfo

import (
	"strings"
	"testing"
)

func TestGetReflectsVariables(t *testing.T) {
	prev := Version
	Version = "v1.2.3"
	defer func() { Version = prev }()

	if got := Get(); got.Version != "v1.2.3" || got.Commit != Commit || got.Date != Date {
		t.Errorf("Get() = %+v", got)
	}
	if tmpl := Template(); !strings.Contains(tmpl, "v1.2.3") || !strings.Contains(tmpl, "{{.Name}}") {
		t.Errorf("Template() = %q", tmpl)
	}
}
