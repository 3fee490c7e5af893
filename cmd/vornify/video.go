package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/vornify-cli/internal/logging"
	"github.com/yourusername/vornify-cli/internal/output"
	vornifyState "github.com/yourusername/vornify-cli/internal/state"
	"github.com/yourusername/vornify-cli/internal/video"
)

// videoCmd is the parent command for video transfer
var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Upload and download videos",
	Long: `Transfers video files to and from the videos collection. Files are encoded
as base64 data URIs in 1 MiB frames; downloads are verified before they are kept.`,
}

// Video flags
var (
	videoTitle       string
	videoDescription string
	videoTags        []string
	videoPublic      bool
	videoDir         string
	videoCollection  string
	historyReset     bool
	watchSettle      time.Duration
)

var videoUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a video file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		svc, err := newVideoService()
		if err != nil {
			return err
		}

		var done func()
		if !jsonOutput {
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				svc.OnFrame, done = output.FrameProgress(os.Stderr, "encoding", info.Size())
			}
		}

		title := videoTitle
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		private := cfg.Video.Private
		if videoPublic {
			private = false
		}

		result, err := svc.Upload(cmd.Context(), path, video.Metadata{
			Title:       title,
			Description: videoDescription,
			Tags:        videoTags,
		}, private)
		if done != nil {
			done()
		}
		if err != nil {
			return err
		}

		recordUpload(result, path, title)

		if jsonOutput {
			return output.PrintJSON(os.Stdout, result)
		}
		output.PrintSuccess(os.Stdout, "Uploaded %s", filepath.Base(path))
		output.PrintKeyValue(os.Stdout, "Video ID", result.ID)
		output.PrintKeyValue(os.Stdout, "Size", output.FormatBytes(float64(result.Size)))
		output.PrintKeyValue(os.Stdout, "Frames", result.Frames)
		return nil
	},
}

var videoDownloadCmd = &cobra.Command{
	Use:   "download [video-id]",
	Short: "Download a video (defaults to the most recent upload)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := ""
		if len(args) == 1 {
			id = args[0]
		} else {
			history, err := vornifyState.LoadHistory()
			if err != nil {
				return fmt.Errorf("failed to load upload history: %w", err)
			}
			latest := history.Latest()
			if latest == nil {
				return fmt.Errorf("no video id given and no recorded uploads")
			}
			id = latest.ID
			logging.Debug().Str("cmd", "video-download").Str("id", id).Msg("using latest upload")
		}

		dir := videoDir
		if dir == "" {
			dir = cfg.Video.DownloadDir
		}

		svc, err := newVideoService()
		if err != nil {
			return err
		}
		result, err := svc.Download(cmd.Context(), id, dir)
		if err != nil {
			return err
		}

		if jsonOutput {
			return output.PrintJSON(os.Stdout, result)
		}
		output.PrintSuccess(os.Stdout, "Downloaded video %s", id)
		output.PrintKeyValue(os.Stdout, "Path", result.Path)
		output.PrintKeyValue(os.Stdout, "Size", output.FormatBytes(float64(result.Size)))
		if result.Metadata.Title != "" {
			output.PrintKeyValue(os.Stdout, "Title", result.Metadata.Title)
		}
		return nil
	},
}

var videoHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded uploads",
	RunE: func(cmd *cobra.Command, args []string) error {
		history, err := vornifyState.LoadHistory()
		if err != nil {
			return fmt.Errorf("failed to load upload history: %w", err)
		}

		if historyReset {
			if err := history.Reset(vornifyState.GetStatePath()); err != nil {
				return fmt.Errorf("failed to reset upload history: %w", err)
			}
			output.PrintSuccess(os.Stdout, "Upload history cleared")
			return nil
		}

		entries := history.List()
		if jsonOutput {
			return output.PrintJSON(os.Stdout, entries)
		}
		if len(entries) == 0 {
			fmt.Println("No uploads recorded")
			return nil
		}
		output.PrintHistoryTable(os.Stdout, entries)
		return nil
	},
}

var videoWatchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Upload new video files as they appear in a directory",
	Long: `Watches a directory and uploads each new video file once it has stopped
changing for the settle period. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newVideoService()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		private := cfg.Video.Private
		if videoPublic {
			private = false
		}

		if !jsonOutput {
			output.InfoColor.Printf("Watching %s (Ctrl-C to stop)\n", args[0])
		}
		return svc.Watch(ctx, args[0], video.WatchOptions{
			Settle:  watchSettle,
			Private: private,
			OnUpload: func(path string, res *video.UploadResult, err error) {
				if err != nil {
					output.PrintError(os.Stderr, fmt.Sprintf("%s: %v", filepath.Base(path), err))
					return
				}
				title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				recordUpload(res, path, title)
				if jsonOutput {
					_ = output.PrintJSON(os.Stdout, map[string]interface{}{"path": path, "id": res.ID, "size": res.Size})
					return
				}
				output.PrintSuccess(os.Stdout, "Uploaded %s as %s", filepath.Base(path), res.ID)
			},
		})
	},
}

func init() {
	videoCmd.AddCommand(videoUploadCmd)
	videoCmd.AddCommand(videoDownloadCmd)
	videoCmd.AddCommand(videoHistoryCmd)
	videoCmd.AddCommand(videoWatchCmd)

	videoCmd.PersistentFlags().StringVar(&videoCollection, "collection", "", "Collection name (default from config)")
	videoCmd.PersistentFlags().StringVar(&dbDatabase, "database", "", "Database name (default from config)")

	videoUploadCmd.Flags().StringVar(&videoTitle, "title", "", "Video title (default: file name)")
	videoUploadCmd.Flags().StringVar(&videoDescription, "description", "", "Video description")
	videoUploadCmd.Flags().StringSliceVar(&videoTags, "tags", nil, "Comma-separated tags")
	videoUploadCmd.Flags().BoolVar(&videoPublic, "public", false, "Mark the video public")

	videoDownloadCmd.Flags().StringVar(&videoDir, "dir", "", "Download directory (default from config)")

	videoHistoryCmd.Flags().BoolVar(&historyReset, "reset", false, "Clear the upload history")

	videoWatchCmd.Flags().DurationVar(&watchSettle, "settle", video.DefaultSettle, "Time a file must stay unchanged before upload")
	videoWatchCmd.Flags().BoolVar(&videoPublic, "public", false, "Mark uploads public")
}

func newVideoService() (*video.Service, error) {
	c, err := newAPIClient()
	if err != nil {
		return nil, err
	}
	collection := videoCollection
	if collection == "" {
		collection = cfg.Video.Collection
	}
	return video.NewService(c, databaseName(), collection, logging.Logger), nil
}

// recordUpload adds an upload to the history; failures are logged, not returned
func recordUpload(result *video.UploadResult, path, title string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	collection := videoCollection
	if collection == "" {
		collection = cfg.Video.Collection
	}
	entry := vornifyState.UploadEntry{
		ID:         result.ID,
		Filename:   filepath.Base(path),
		Title:      title,
		SourcePath: abs,
		Size:       result.Size,
		Frames:     result.Frames,
		Database:   databaseName(),
		Collection: collection,
	}
	if err := recordUploadAt(vornifyState.GetStatePath(), entry); err != nil {
		logging.Warn().Err(err).Str("id", result.ID).Msg("upload not recorded")
	}
}

// recordUploadAt appends entry to the history file at statePath. An unreadable
// history file is left as it is rather than replaced.
func recordUploadAt(statePath string, entry vornifyState.UploadEntry) error {
	history, err := vornifyState.LoadHistoryFrom(statePath)
	if err != nil {
		return fmt.Errorf("failed to load upload history: %w", err)
	}
	history.Record(entry)
	if err := history.SaveTo(statePath); err != nil {
		return fmt.Errorf("failed to save upload history: %w", err)
	}
	return nil
}
