// Package codec converts files to and from base64 data URIs.
//
// Encoding reads the source one frame at a time and base64-encodes every frame
// on its own, so an encoded stream is a concatenation of independently padded
// base64 runs. Decoding treats the payload as one string and does not need to
// know where the frames were cut.
package codec

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/vornify-cli/internal/models"
)

const (
	// FrameSize is the number of source bytes encoded per frame
	FrameSize = 1 << 20

	// MinPayloadSize is the smallest decoded file accepted by DecodeFile
	MinPayloadSize = 100

	base64Marker = ";base64,"
)

// FrameFunc is called after each frame is encoded with its index and raw size
type FrameFunc func(index int, size int)

// Header returns the data URI header for a MIME type
func Header(mimeType string) string {
	return "data:" + mimeType + base64Marker
}

// Encode writes the data URI for r to w and returns the number of frames read
func Encode(w io.Writer, r io.Reader, mimeType string, onFrame FrameFunc) (int, error) {
	if _, err := io.WriteString(w, Header(mimeType)); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	frame := make([]byte, FrameSize)
	encoded := make([]byte, base64.StdEncoding.EncodedLen(FrameSize))
	frames := 0

	for {
		n, err := io.ReadFull(r, frame)
		if n > 0 {
			enc := encoded[:base64.StdEncoding.EncodedLen(n)]
			base64.StdEncoding.Encode(enc, frame[:n])
			if _, werr := w.Write(enc); werr != nil {
				return frames, fmt.Errorf("write frame %d: %w", frames, werr)
			}
			if onFrame != nil {
				onFrame(frames, n)
			}
			frames++
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return frames, nil
		}
		if err != nil {
			return frames, fmt.Errorf("read frame %d: %w", frames, err)
		}
	}
}

// EncodeFile returns the data URI for the file at path
func EncodeFile(path, mimeType string, onFrame FrameFunc) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return "", models.NewError(models.KindNotFound, "encode "+path, err)
		}
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", models.NewError(models.KindNotFound, "encode "+path, err)
	}
	if info.IsDir() {
		return "", models.NewError(models.KindNotFound, "encode "+path, fmt.Errorf("is a directory"))
	}

	var sb strings.Builder
	sb.Grow(len(Header(mimeType)) + base64.StdEncoding.EncodedLen(int(info.Size())) + 4)
	if _, err := Encode(&sb, f, mimeType, onFrame); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ParseHeader validates the data URI header and returns the MIME type and the
// base64 payload that follows the marker
func ParseHeader(uri string) (mimeType, payload string, err error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", "", models.NewError(models.KindMalformedPayload, "parse data uri", fmt.Errorf("missing data: prefix"))
	}
	idx := strings.Index(uri, base64Marker)
	if idx < 0 {
		return "", "", models.NewError(models.KindMalformedPayload, "parse data uri", fmt.Errorf("missing %q marker", base64Marker))
	}
	mimeType = uri[len("data:"):idx]
	slash := strings.IndexByte(mimeType, '/')
	if slash <= 0 || slash == len(mimeType)-1 {
		return "", "", models.NewError(models.KindMalformedPayload, "parse data uri", fmt.Errorf("invalid mime type %q", mimeType))
	}
	return mimeType, uri[idx+len(base64Marker):], nil
}

// Decode writes the bytes of a data URI to w. At least minSize bytes must be
// produced (an empty payload is always rejected).
func Decode(w io.Writer, uri string, minSize int64) (int64, error) {
	_, payload, err := ParseHeader(uri)
	if err != nil {
		return 0, err
	}
	if minSize < 1 {
		minSize = 1
	}

	n, err := decodePayload(w, payload)
	if err != nil {
		return n, err
	}
	if n < minSize {
		return n, models.NewError(models.KindInvalidPayload, "decode data uri",
			fmt.Errorf("decoded %d bytes, want at least %d", n, minSize))
	}
	return n, nil
}

// DecodeFile decodes a data URI into dest. The payload is written to a
// temporary file next to dest and renamed over it only once it passes the
// integrity check, so a rejected payload leaves any existing dest untouched.
func DecodeFile(uri, dest string) (n int64, err error) {
	if _, _, err := ParseHeader(uri); err != nil {
		return 0, err
	}

	f, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", dest, err)
	}
	tmpPath := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	bw := bufio.NewWriter(f)
	n, err = Decode(bw, uri, MinPayloadSize)
	if err != nil {
		return n, err
	}
	if err = bw.Flush(); err != nil {
		return n, fmt.Errorf("write %s: %w", dest, err)
	}
	if err = f.Close(); err != nil {
		return n, fmt.Errorf("close %s: %w", dest, err)
	}
	if err = os.Chmod(tmpPath, 0644); err != nil {
		return n, fmt.Errorf("chmod %s: %w", dest, err)
	}
	if err = os.Rename(tmpPath, dest); err != nil {
		return n, fmt.Errorf("rename %s: %w", dest, err)
	}
	return n, nil
}

// decodePayload decodes concatenated base64 runs. Each run ends at the quantum
// that carries padding, so the payload is split there and decoded run by run.
func decodePayload(w io.Writer, payload string) (int64, error) {
	var total int64
	buf := make([]byte, 0, base64.StdEncoding.DecodedLen(FrameSize*2))

	for len(payload) > 0 {
		end := len(payload)
		if pad := strings.IndexByte(payload, '='); pad >= 0 {
			end = pad + 1
			for end < len(payload) && payload[end] == '=' {
				end++
			}
		}
		run := payload[:end]
		payload = payload[end:]

		need := base64.StdEncoding.DecodedLen(len(run))
		if cap(buf) < need {
			buf = make([]byte, need)
		}
		n, err := base64.StdEncoding.Decode(buf[:need], []byte(run))
		if err != nil {
			return total, models.NewError(models.KindInvalidPayload, "decode data uri", err)
		}
		if _, err := w.Write(buf[:n]); err != nil {
			return total, fmt.Errorf("write decoded data: %w", err)
		}
		total += int64(n)
	}
	return total, nil
}
