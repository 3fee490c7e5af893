package codec

import (
	"bytes"
	"encoding/base64"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yourusername/vornify-cli/internal/models"
)

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	rand.New(rand.NewSource(int64(n))).Read(b)
	return b
}

func encodeBytes(t *testing.T, data []byte, mimeType string) (string, []int) {
	t.Helper()
	var sb strings.Builder
	var sizes []int
	_, err := Encode(&sb, bytes.NewReader(data), mimeType, func(_ int, size int) {
		sizes = append(sizes, size)
	})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	return sb.String(), sizes
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		frames int
	}{
		{"one byte", 1, 1},
		{"one frame exactly", FrameSize, 1},
		{"crosses frame boundary", FrameSize + 1, 2},
		{"odd size", 3*FrameSize/2 + 7, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := randomBytes(t, tt.size)
			uri, sizes := encodeBytes(t, data, "video/mp4")

			if len(sizes) != tt.frames {
				t.Errorf("frames = %d, want %d", len(sizes), tt.frames)
			}

			var out bytes.Buffer
			n, err := Decode(&out, uri, 1)
			if err != nil {
				t.Fatalf("Decode returned error: %v", err)
			}
			if n != int64(tt.size) {
				t.Errorf("Decode n = %d, want %d", n, tt.size)
			}
			if !bytes.Equal(out.Bytes(), data) {
				t.Error("decoded bytes differ from source")
			}
		})
	}
}

func TestDecodeEmptyPayloadIsInvalid(t *testing.T) {
	uri, sizes := encodeBytes(t, nil, "video/mp4")
	if len(sizes) != 0 {
		t.Errorf("frames = %d, want 0", len(sizes))
	}
	if uri != "data:video/mp4;base64," {
		t.Errorf("uri = %q, want bare header", uri)
	}

	var out bytes.Buffer
	_, err := Decode(&out, uri, 0)
	if !models.IsKind(err, models.KindInvalidPayload) {
		t.Fatalf("Decode error = %v, want invalid payload", err)
	}
}

func TestFramesAreEncodedIndependently(t *testing.T) {
	data := randomBytes(t, FrameSize+10)
	uri, _ := encodeBytes(t, data, "application/octet-stream")

	want := Header("application/octet-stream") +
		base64.StdEncoding.EncodeToString(data[:FrameSize]) +
		base64.StdEncoding.EncodeToString(data[FrameSize:])
	if uri != want {
		t.Error("encoded uri is not the concatenation of per-frame encodings")
	}
	// A full frame is not a multiple of three bytes, so padding sits mid-string
	if !strings.Contains(uri[:len(uri)-4], "=") {
		t.Error("expected inner padding between frames")
	}
}

func TestEncodeFileDecodeFileScenario(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "clip.mp4")
	size := 5 * FrameSize / 2
	data := randomBytes(t, size)
	if err := os.WriteFile(src, data, 0644); err != nil {
		t.Fatal(err)
	}

	var sizes []int
	uri, err := EncodeFile(src, "video/mp4", func(_ int, n int) {
		sizes = append(sizes, n)
	})
	if err != nil {
		t.Fatalf("EncodeFile returned error: %v", err)
	}

	wantSizes := []int{FrameSize, FrameSize, FrameSize / 2}
	if len(sizes) != len(wantSizes) {
		t.Fatalf("frame sizes = %v, want %v", sizes, wantSizes)
	}
	for i := range wantSizes {
		if sizes[i] != wantSizes[i] {
			t.Errorf("frame %d size = %d, want %d", i, sizes[i], wantSizes[i])
		}
	}
	if !strings.HasPrefix(uri, "data:video/mp4;base64,") {
		t.Errorf("uri prefix = %q", uri[:30])
	}
	if strings.Count(uri, ",") != 1 {
		t.Error("frames must be concatenated without delimiters")
	}

	dest := filepath.Join(dir, "out.mp4")
	n, err := DecodeFile(uri, dest)
	if err != nil {
		t.Fatalf("DecodeFile returned error: %v", err)
	}
	if n != int64(size) {
		t.Errorf("DecodeFile n = %d, want %d", n, size)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Error("decoded file differs from source")
	}
}

func TestDecodeFileRejectsSmallPayload(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "small.mp4")
	uri, _ := encodeBytes(t, randomBytes(t, 50), "video/mp4")

	_, err := DecodeFile(uri, dest)
	if !models.IsKind(err, models.KindInvalidPayload) {
		t.Fatalf("DecodeFile error = %v, want invalid payload", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Errorf("partial file left behind: stat err = %v", statErr)
	}
}

func TestDecodeFileRejectsCorruptBody(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "corrupt.mp4")
	uri, _ := encodeBytes(t, randomBytes(t, 300), "video/mp4")
	uri += "!!!!"

	_, err := DecodeFile(uri, dest)
	if !models.IsKind(err, models.KindInvalidPayload) {
		t.Fatalf("DecodeFile error = %v, want invalid payload", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Errorf("partial file left behind: stat err = %v", statErr)
	}
}

func TestDecodeFileKeepsExistingFileOnRejection(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "downloaded_clip.mp4")
	original := randomBytes(t, 4096)
	if err := os.WriteFile(dest, original, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		uri  string
	}{
		{"too small", Header("video/mp4") + base64.StdEncoding.EncodeToString(make([]byte, 50))},
		{"corrupt body", Header("video/mp4") + base64.StdEncoding.EncodeToString(make([]byte, 300)) + "!!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFile(tt.uri, dest)
			if !models.IsKind(err, models.KindInvalidPayload) {
				t.Fatalf("DecodeFile error = %v, want invalid payload", err)
			}
			got, err := os.ReadFile(dest)
			if err != nil {
				t.Fatalf("existing file lost: %v", err)
			}
			if !bytes.Equal(got, original) {
				t.Error("existing file was modified")
			}
		})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the original file", len(entries))
	}
}

func TestDecodeFileReplacesExistingFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "downloaded_clip.mp4")
	if err := os.WriteFile(dest, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	data := randomBytes(t, 500)
	uri, _ := encodeBytes(t, data, "video/mp4")

	if _, err := DecodeFile(uri, dest); err != nil {
		t.Fatalf("DecodeFile returned error: %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Error("destination does not hold the decoded payload")
	}
}

func TestMalformedHeader(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"no marker", "data:video/mp4," + base64.StdEncoding.EncodeToString(make([]byte, 200))},
		{"no prefix", "video/mp4;base64,AAAA"},
		{"no subtype", "data:video;base64,AAAA"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "never.mp4")
			_, err := DecodeFile(tt.uri, dest)
			if !models.IsKind(err, models.KindMalformedPayload) {
				t.Fatalf("DecodeFile error = %v, want malformed payload", err)
			}
			if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
				t.Error("destination created for malformed uri")
			}
		})
	}
}

func TestParseHeader(t *testing.T) {
	mimeType, payload, err := ParseHeader("data:video/webm;base64,QUJD")
	if err != nil {
		t.Fatalf("ParseHeader returned error: %v", err)
	}
	if mimeType != "video/webm" {
		t.Errorf("mimeType = %q, want video/webm", mimeType)
	}
	if payload != "QUJD" {
		t.Errorf("payload = %q, want QUJD", payload)
	}
}

func TestEncodeFileMissingSource(t *testing.T) {
	_, err := EncodeFile(filepath.Join(t.TempDir(), "missing.mp4"), "video/mp4", nil)
	if !models.IsKind(err, models.KindNotFound) {
		t.Fatalf("EncodeFile error = %v, want not found", err)
	}
}
