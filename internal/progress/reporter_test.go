package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{Description: "Importing", Out: &buf}

	track := Track(r)
	track(1, 2, "project e-shop")
	track(2, 2, "skill go")
	r.Finish()

	want := "Importing: 2 documents\n[1/2] project e-shop\n[2/2] skill go\nImporting: done\n"
	if buf.String() != want {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestTerminalReporterWritesToOut(t *testing.T) {
	var buf bytes.Buffer
	r := &TerminalReporter{Description: "Syncing", Out: &buf}

	r.Start(3)
	r.Update(2, "service web")
	r.Finish()

	if !strings.Contains(buf.String(), "service web") {
		t.Errorf("expected description in bar output, got %q", buf.String())
	}
}

func TestNewReporterInCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter("x").(*CIReporter); !ok {
		t.Error("expected CIReporter when CI is set")
	}
}
