package main

import (
	"os"
	"path/filepath"
	"testing"

	vornifyState "github.com/yourusername/vornify-cli/internal/state"
)

func TestNormalizeCommand(t *testing.T) {
	tests := map[string]string{
		"read":           "--read",
		"--read":         "--read",
		" update-field ": "--update-field",
		"--create_video": "--create_video",
	}
	for in, want := range tests {
		if got := normalizeCommand(in); got != want {
			t.Errorf("normalizeCommand(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseJSONObject(t *testing.T) {
	obj, err := parseJSONObject(`{"email": "a@example.com", /* note */ "age": 3,}`)
	if err != nil {
		t.Fatalf("parseJSONObject returned error: %v", err)
	}
	if obj["email"] != "a@example.com" || obj["age"] != float64(3) {
		t.Errorf("obj = %v", obj)
	}

	empty, err := parseJSONObject("")
	if err != nil || len(empty) != 0 {
		t.Errorf("empty = %v, %v", empty, err)
	}

	if _, err := parseJSONObject(`[1, 2]`); err == nil {
		t.Error("expected error for array")
	}
	if _, err := parseJSONObject(`{`); err == nil {
		t.Error("expected error for invalid JSON")
	}

	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(`{"id": "x"}`), 0644); err != nil {
		t.Fatal(err)
	}
	fromFile, err := parseJSONObject("@" + path)
	if err != nil || fromFile["id"] != "x" {
		t.Errorf("fromFile = %v, %v", fromFile, err)
	}
}

func TestReadTextArg(t *testing.T) {
	if got, err := readTextArg("<p>hi</p>", "", "html"); err != nil || got != "<p>hi</p>" {
		t.Errorf("inline = %q, %v", got, err)
	}
	if _, err := readTextArg("a", "b", "html"); err == nil {
		t.Error("expected error when both are set")
	}

	path := filepath.Join(t.TempDir(), "body.html")
	if err := os.WriteFile(path, []byte("<b>file</b>"), 0644); err != nil {
		t.Fatal(err)
	}
	if got, err := readTextArg("", path, "html"); err != nil || got != "<b>file</b>" {
		t.Errorf("file = %q, %v", got, err)
	}
}

func TestRecordUploadAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	if err := recordUploadAt(path, vornifyState.UploadEntry{ID: "v1", Filename: "a.mp4"}); err != nil {
		t.Fatalf("recordUploadAt returned error: %v", err)
	}
	if err := recordUploadAt(path, vornifyState.UploadEntry{ID: "v2", Filename: "b.mp4"}); err != nil {
		t.Fatalf("recordUploadAt returned error: %v", err)
	}

	history, err := vornifyState.LoadHistoryFrom(path)
	if err != nil {
		t.Fatalf("LoadHistoryFrom returned error: %v", err)
	}
	if history.Len() != 2 {
		t.Errorf("Len() = %d, want 2", history.Len())
	}
}

func TestRecordUploadAtKeepsUnreadableHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	corrupt := []byte(`{"version": 1, "uploads": [`)
	if err := os.WriteFile(path, corrupt, 0644); err != nil {
		t.Fatal(err)
	}

	if err := recordUploadAt(path, vornifyState.UploadEntry{ID: "v1"}); err == nil {
		t.Fatal("expected error for unreadable history")
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(corrupt) {
		t.Errorf("history file was rewritten: %s", got)
	}
}

func TestSkipsConfigLoad(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		want bool
	}{
		{"config validate", "validate", true},
		{"config init", "init", true},
		{"config show", "show", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _, err := configCmd.Find([]string{tt.cmd})
			if err != nil {
				t.Fatalf("Find(%q) returned error: %v", tt.cmd, err)
			}
			if got := skipsConfigLoad(cmd); got != tt.want {
				t.Errorf("skipsConfigLoad(%s) = %v, want %v", cmd.Name(), got, tt.want)
			}
		})
	}

	if skipsConfigLoad(pingCmd) {
		t.Error("ping must load config")
	}
}
