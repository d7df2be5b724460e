package dryrun

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestWithDryRun(t *testing.T) {
	if IsEnabled(context.Background()) {
		t.Error("IsEnabled should be false by default")
	}
	if !IsEnabled(WithDryRun(context.Background(), true)) {
		t.Error("IsEnabled should be true when enabled")
	}
	if IsEnabled(WithDryRun(context.Background(), false)) {
		t.Error("IsEnabled should be false when explicitly disabled")
	}
}

func TestPreview_Write(t *testing.T) {
	p := New("delete", "2 health data records").
		With("tracker", "Weight Measurement").
		With("records", []string{"rec-1", "rec-2"}).
		Warn("deleted records cannot be restored")

	var buf bytes.Buffer
	p.Write(&buf)
	out := buf.String()

	for _, want := range []string{
		"[DRY-RUN] Would delete 2 health data records",
		"  records: rec-1, rec-2\n  tracker: Weight Measurement",
		"! deleted records cannot be restored",
		"No changes made",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPreview_WriteMinimal(t *testing.T) {
	var buf bytes.Buffer
	New("publish", "survey abc").Write(&buf)

	want := "[DRY-RUN] Would publish survey abc\nNo changes made (dry-run mode)\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestPreview_JSON(t *testing.T) {
	data, err := json.Marshal(New("withdraw", "consent").With("reason", "moving"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["dryRun"] != true || got["operation"] != "withdraw" {
		t.Errorf("unexpected JSON %s", data)
	}
	if _, ok := got["warnings"]; ok {
		t.Errorf("empty warnings should be omitted: %s", data)
	}
}
