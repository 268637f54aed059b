package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })

	Version, Commit, Date = "v0.3.0", "0123456789abcdef", "2026-01-02T03:04:05Z"
	got := Template()
	if !strings.HasPrefix(got, "{{.Name}} v0.3.0 (0123456789ab, 2026-01-02T03:04:05Z)") {
		t.Errorf("Template() = %q", got)
	}
	if ua := UserAgent(); ua != "btlive/v0.3.0" {
		t.Errorf("UserAgent() = %q", ua)
	}
}
