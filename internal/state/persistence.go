package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultStateDir is the directory under $HOME for state files
	DefaultStateDir = ".local/state/vornify"
	// DefaultStateFile is the history file name
	DefaultStateFile = "history.json"
)

// GetStatePath returns the full path to the history file
func GetStatePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, DefaultStateDir, DefaultStateFile)
}

// LoadHistory loads history from the default path, creating a new one if the file doesn't exist
func LoadHistory() (*History, error) {
	return LoadHistoryFrom(GetStatePath())
}

// LoadHistoryFrom loads history from a specific path
func LoadHistoryFrom(path string) (*History, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewHistory(), nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}

	if h.Version < StateVersion {
		h.Version = StateVersion
	}
	if h.Uploads == nil {
		h.Uploads = make([]*UploadEntry, 0)
	}

	return &h, nil
}

// Save persists history to the default path
func (h *History) Save() error {
	return h.SaveTo(GetStatePath())
}

// SaveTo persists history to a specific path
func (h *History) SaveTo(path string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	// Write atomically using temp file + rename
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename history file: %w", err)
	}

	return nil
}

// Reset clears all uploads and saves to path
func (h *History) Reset(path string) error {
	h.mu.Lock()
	h.Uploads = make([]*UploadEntry, 0)
	h.LastUpdated = time.Now()
	h.mu.Unlock()

	return h.SaveTo(path)
}
