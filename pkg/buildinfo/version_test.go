package buildinfo

import (
	"strings"
	"testing"
)

func TestGetUsesLinkerValues(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v1.2.3"
	if got := Get().Version; got != "v1.2.3" {
		t.Errorf("Version = %q, want v1.2.3", got)
	}
}

func TestStringAndTemplate(t *testing.T) {
	if s := String(); !strings.Contains(s, "commit: "+Commit) || !strings.Contains(s, "go: ") {
		t.Errorf("String() = %q", s)
	}
	if tmpl := Template(); !strings.HasPrefix(tmpl, "{{.Name}} version ") {
		t.Errorf("Template() = %q", tmpl)
	}
}
