package state

import (
	"sort"
	"sync"
	"time"
)

const (
	// StateVersion is the current history file format version
	StateVersion = 1

	// MaxEntries bounds the number of uploads remembered
	MaxEntries = 200
)

// History is the root state structure persisted to disk
type History struct {
	Version     int            `json:"version"`
	Uploads     []*UploadEntry `json:"uploads"`
	LastUpdated time.Time      `json:"lastUpdated"`

	mu sync.RWMutex `json:"-"` // For thread-safe access (not serialized)
}

// UploadEntry records one uploaded video
type UploadEntry struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Title      string    `json:"title,omitempty"`
	SourcePath string    `json:"sourcePath,omitempty"`
	Size       int64     `json:"size"`
	Frames     int       `json:"frames"`
	Database   string    `json:"database"`
	Collection string    `json:"collection"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// NewHistory creates a new empty history
func NewHistory() *History {
	return &History{
		Version:     StateVersion,
		Uploads:     make([]*UploadEntry, 0),
		LastUpdated: time.Now(),
	}
}

// Record adds an upload, replacing any earlier entry with the same ID
func (h *History) Record(e UploadEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if e.UploadedAt.IsZero() {
		e.UploadedAt = time.Now()
	}

	kept := h.Uploads[:0]
	for _, u := range h.Uploads {
		if u.ID != e.ID {
			kept = append(kept, u)
		}
	}
	h.Uploads = append(kept, &e)

	if len(h.Uploads) > MaxEntries {
		h.Uploads = h.Uploads[len(h.Uploads)-MaxEntries:]
	}
	h.LastUpdated = time.Now()
}

// Latest returns the most recent upload, or nil when there is none
func (h *History) Latest() *UploadEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var latest *UploadEntry
	for _, u := range h.Uploads {
		if latest == nil || !u.UploadedAt.Before(latest.UploadedAt) {
			latest = u
		}
	}
	if latest == nil {
		return nil
	}
	cp := *latest
	return &cp
}

// Find returns the upload with the given ID
func (h *History) Find(id string) *UploadEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, u := range h.Uploads {
		if u.ID == id {
			cp := *u
			return &cp
		}
	}
	return nil
}

// List returns copies of all uploads, newest first
func (h *History) List() []UploadEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]UploadEntry, 0, len(h.Uploads))
	for _, u := range h.Uploads {
		out = append(out, *u)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out
}

// Len returns the number of recorded uploads
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Uploads)
}
