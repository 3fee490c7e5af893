// Package video uploads files to and downloads them from the videos collection
// as base64 data URIs.
package video

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yourusername/vornify-cli/internal/client"
	"github.com/yourusername/vornify-cli/internal/codec"
	"github.com/yourusername/vornify-cli/internal/models"
)

const (
	DefaultCollection = "videos"
	DefaultMIMEType   = "video/mp4"
	downloadPrefix    = "downloaded_"
)

// Metadata is stored alongside an uploaded video
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Filename    string   `json:"filename"`
}

// UploadResult identifies a stored video
type UploadResult struct {
	ID     string
	Size   int64
	Frames int
}

// DownloadResult describes a downloaded video
type DownloadResult struct {
	Path     string
	Size     int64
	Metadata Metadata
}

// Sender is the part of the client used for video transfer
type Sender interface {
	DB(ctx context.Context, database, collection, command string, data map[string]interface{}) (*models.ResponseEnvelope, error)
}

var _ Sender = (*client.Client)(nil)

// Service moves videos between disk and the database
type Service struct {
	sender     Sender
	database   string
	collection string
	log        zerolog.Logger

	// OnFrame is called for every encoded frame during Upload
	OnFrame codec.FrameFunc
}

// NewService creates a video service for database/collection
func NewService(sender Sender, database, collection string, log zerolog.Logger) *Service {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Service{
		sender:     sender,
		database:   database,
		collection: collection,
		log:        log,
	}
}

// Upload encodes the file at path and stores it
func (s *Service) Upload(ctx context.Context, path string, meta Metadata, private bool) (*UploadResult, error) {
	mimeType := MIMEType(path)
	if meta.Filename == "" {
		meta.Filename = filepath.Base(path)
	}
	if meta.Tags == nil {
		meta.Tags = []string{}
	}

	frames := 0
	uri, err := codec.EncodeFile(path, mimeType, func(i, n int) {
		frames = i + 1
		if s.OnFrame != nil {
			s.OnFrame(i, n)
		}
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("file", path).
		Str("mime", mimeType).
		Int("frames", frames).
		Int("encoded_len", len(uri)).
		Msg("encoded video")

	data := map[string]interface{}{
		"video": uri,
		"metadata": map[string]interface{}{
			"title":       meta.Title,
			"description": meta.Description,
			"tags":        meta.Tags,
			"filename":    meta.Filename,
		},
		"isPrivate": private,
	}

	resp, err := s.sender.DB(ctx, s.database, s.collection, client.CmdCreateVideo, data)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", meta.Filename, err)
	}
	if resp.IsError() {
		return nil, &client.CommandError{Command: client.CmdCreateVideo, Response: resp}
	}

	var stored struct {
		ID   string `json:"id"`
		Size int64  `json:"size"`
	}
	if err := resp.DecodeData(&stored); err != nil {
		return nil, models.NewError(models.KindMalformedResponse, client.CmdCreateVideo, err)
	}
	if stored.ID == "" {
		return nil, models.NewError(models.KindMalformedResponse, client.CmdCreateVideo, fmt.Errorf("response has no video id"))
	}

	s.log.Info().Str("id", stored.ID).Int64("size", stored.Size).Msg("uploaded video")
	return &UploadResult{ID: stored.ID, Size: stored.Size, Frames: frames}, nil
}

// Download fetches a video by id and writes it to dir as downloaded_<filename>.
// Nothing is left on disk when the request or the integrity check fails.
func (s *Service) Download(ctx context.Context, id, dir string) (*DownloadResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("video id is required")
	}

	resp, err := s.sender.DB(ctx, s.database, s.collection, client.CmdGetVideo, map[string]interface{}{"id": id})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", id, err)
	}
	if resp.IsError() {
		return nil, &client.CommandError{Command: client.CmdGetVideo, Response: resp}
	}

	var stored struct {
		Video    string   `json:"video"`
		Metadata Metadata `json:"metadata"`
	}
	if err := resp.DecodeData(&stored); err != nil {
		return nil, models.NewError(models.KindMalformedResponse, client.CmdGetVideo, err)
	}
	if stored.Video == "" {
		return nil, models.NewError(models.KindInvalidPayload, client.CmdGetVideo, fmt.Errorf("received empty video data"))
	}

	mimeType, _, err := codec.ParseHeader(stored.Video)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(mimeType, "video/") {
		return nil, models.NewError(models.KindMalformedPayload, client.CmdGetVideo, fmt.Errorf("unexpected mime type %q", mimeType))
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create download directory: %w", err)
	}
	dest := filepath.Join(dir, downloadPrefix+safeFilename(stored.Metadata.Filename, id, mimeType))

	n, err := codec.DecodeFile(stored.Video, dest)
	if err != nil {
		s.log.Warn().Err(err).Str("id", id).Msg("discarded video download")
		return nil, err
	}

	s.log.Info().Str("id", id).Str("path", dest).Int64("size", n).Msg("downloaded video")
	return &DownloadResult{Path: dest, Size: n, Metadata: stored.Metadata}, nil
}

// MIMEType guesses a video MIME type from the file extension
func MIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return DefaultMIMEType
	}
	if t := mime.TypeByExtension(ext); strings.HasPrefix(t, "video/") {
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = t[:i]
		}
		return t
	}
	switch ext {
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	case ".avi":
		return "video/x-msvideo"
	}
	return DefaultMIMEType
}

// safeFilename strips directories from a server-supplied name
func safeFilename(name, id, mimeType string) string {
	base := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, "\\", "/")))
	if base == "/" || base == "." || base == "" {
		ext := ".mp4"
		if exts, _ := mime.ExtensionsByType(mimeType); len(exts) > 0 {
			ext = exts[0]
		}
		return id + ext
	}
	return base
}
