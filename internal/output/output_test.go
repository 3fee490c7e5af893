package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/yourusername/vornify-cli/internal/client"
	"github.com/yourusername/vornify-cli/internal/models"
	"github.com/yourusername/vornify-cli/internal/printful"
	"github.com/yourusername/vornify-cli/internal/state"
)

func disableColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"åäöåäöåäö", 5, "åä..."},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[float64]string{
		0:                "0 B",
		1023:             "1023 B",
		1024:             "1.0 KiB",
		1536:             "1.5 KiB",
		1 << 20:          "1.0 MiB",
		2.5 * (1 << 20):  "2.5 MiB",
		3 * (1 << 30):    "3.0 GiB",
		2048 * (1 << 40): "2048.0 TiB",
	}
	for in, want := range tests {
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestProgressLine(t *testing.T) {
	line := ProgressLine("upload", 1<<20, 2<<20, 60)
	if !strings.HasPrefix(line, "upload [") || !strings.Contains(line, " 50% 1.0 MiB/2.0 MiB") {
		t.Errorf("line = %q", line)
	}
	if len(line) > 60 {
		t.Errorf("line is %d chars, wider than 60", len(line))
	}

	// Too narrow for a bar
	if got := ProgressLine("upload", 5, 10, 20); strings.Contains(got, "[") {
		t.Errorf("narrow line = %q, want no bar", got)
	}

	// Overshoot clamps to 100%
	if got := ProgressLine("x", 20, 10, 80); !strings.Contains(got, "100%") {
		t.Errorf("line = %q, want 100%%", got)
	}
}

func TestFrameProgress(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	onFrame, done := FrameProgress(&buf, "encoding", 3<<20)
	onFrame(0, 1<<20)
	onFrame(1, 1<<20)
	onFrame(2, 1<<20)
	done()

	out := buf.String()
	if !strings.Contains(out, "frame 3") || !strings.Contains(out, "100%") {
		t.Errorf("progress output = %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("done() should end the line")
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSON(&buf, map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\n  \"a\": 1\n}\n" {
		t.Errorf("PrintJSON = %q", buf.String())
	}
}

func TestPrintErrorPlain(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	PrintError(&buf, "boom")
	if buf.String() != "Error: boom\n" {
		t.Errorf("PrintError = %q", buf.String())
	}
}

func TestPrintEnvelope(t *testing.T) {
	disableColor(t)

	var resp models.ResponseEnvelope
	if err := json.Unmarshal([]byte(`{"status": true, "data": {"id": "vid1", "size": 2048}}`), &resp); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := PrintEnvelope(&buf, &resp); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Success") || !strings.Contains(out, "id: vid1") || !strings.Contains(out, "size: 2048") {
		t.Errorf("output = %q", out)
	}

	var failed models.ResponseEnvelope
	if err := json.Unmarshal([]byte(`{"success": false, "error": "not found"}`), &failed); err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	if err := PrintEnvelope(&buf, &failed); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Error: not found") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestTablesContainRows(t *testing.T) {
	var buf bytes.Buffer

	PrintHistoryTable(&buf, []state.UploadEntry{
		{ID: "vid1", Filename: "clip.mp4", Size: 2 << 20, Frames: 2, UploadedAt: time.Now()},
	})
	if !strings.Contains(buf.String(), "vid1") || !strings.Contains(buf.String(), "clip.mp4") {
		t.Errorf("history table = %q", buf.String())
	}

	buf.Reset()
	PrintCollectionsTable(&buf, []client.CollectionStats{
		{Name: "users", DocumentCount: 12, Size: 4096},
		{Name: "videos", DocumentCount: 3, Size: 8 << 20},
	})
	out := buf.String()
	if strings.Index(out, "videos") > strings.Index(out, "users") {
		t.Errorf("collections not sorted by size: %q", out)
	}

	buf.Reset()
	PrintProductsTable(&buf, []printful.Product{{ID: 7, Name: "Tee", Variants: 2, Synced: 2}})
	if !strings.Contains(buf.String(), "Tee") || !strings.Contains(buf.String(), "2/2") {
		t.Errorf("products table = %q", buf.String())
	}
}
