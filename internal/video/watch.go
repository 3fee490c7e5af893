package video

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yourusername/vornify-cli/internal/models"
)

// DefaultSettle is how long a new file must stay unchanged before upload
const DefaultSettle = 2 * time.Second

var videoExtensions = map[string]bool{
	".mp4": true, ".m4v": true, ".mov": true, ".webm": true,
	".mkv": true, ".avi": true, ".mpeg": true, ".mpg": true,
}

// WatchOptions configures Watch
type WatchOptions struct {
	Settle  time.Duration
	Private bool
	// OnUpload is called after every attempted upload
	OnUpload func(path string, res *UploadResult, err error)
}

// IsVideoFile reports whether path has a video extension
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if videoExtensions[ext] {
		return true
	}
	return strings.HasPrefix(mime.TypeByExtension(ext), "video/")
}

// Watch uploads video files written to dir until ctx is cancelled. A file is
// uploaded once it has gone opts.Settle without write events. Upload failures
// go to OnUpload and do not stop the watch.
func (s *Service) Watch(ctx context.Context, dir string, opts WatchOptions) error {
	w, err := s.startWatch(dir)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()
	return s.watchLoop(ctx, w, opts)
}

func (s *Service) startWatch(dir string) (*fsnotify.Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, models.NewError(models.KindNotFound, "watch "+dir, err)
	}
	if !info.IsDir() {
		return nil, models.NewError(models.KindNotFound, "watch "+dir, fmt.Errorf("not a directory"))
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return w, nil
}

func (s *Service) watchLoop(ctx context.Context, w *fsnotify.Watcher, opts WatchOptions) error {
	settle := opts.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	s.log.Info().Strs("dirs", w.WatchList()).Dur("settle", settle).Msg("watching for videos")

	// path -> time of the last write event
	pending := make(map[string]time.Time)
	tick := time.NewTicker(settle / 2)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				delete(pending, ev.Name)
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if IsVideoFile(ev.Name) {
				pending[ev.Name] = time.Now()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn().Err(err).Msg("watch error")

		case now := <-tick.C:
			for path, last := range pending {
				if now.Sub(last) < settle {
					continue
				}
				delete(pending, path)
				s.uploadWatched(ctx, path, opts)
			}
		}
	}
}

func (s *Service) uploadWatched(ctx context.Context, path string, opts WatchOptions) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	res, err := s.Upload(ctx, path, Metadata{Title: title}, opts.Private)
	if err != nil {
		s.log.Error().Err(err).Str("file", path).Msg("watched upload failed")
	}
	if opts.OnUpload != nil {
		opts.OnUpload(path, res, err)
	}
}
