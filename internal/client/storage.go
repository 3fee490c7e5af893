package client

import (
	"context"
	"fmt"

	"github.com/yourusername/vornify-cli/internal/models"
)

// StorageStats mirrors the payload returned by the storage endpoint
type StorageStats struct {
	Database  string               `json:"database"`
	Timestamp string               `json:"timestamp"`
	Stats     DatabaseStats        `json:"stats"`
	History   []StorageHistoryItem `json:"history"`
}

// DatabaseStats aggregates database-level sizes
type DatabaseStats struct {
	TotalSize       float64           `json:"totalSize"`
	StorageSize     float64           `json:"storageSize"`
	Indexes         int               `json:"indexes"`
	TotalIndexSize  float64           `json:"totalIndexSize"`
	Collections     []CollectionStats `json:"collections"`
	AvgDocumentSize float64           `json:"avgDocumentSize"`
	FreeSpace       float64           `json:"freeSpace"`
	ScaleFactor     float64           `json:"scaleFactor"`
}

// CollectionStats describes one collection
type CollectionStats struct {
	Name            string  `json:"name"`
	Size            float64 `json:"size"`
	StorageSize     float64 `json:"storageSize"`
	DocumentCount   int64   `json:"documentCount"`
	AvgDocumentSize float64 `json:"avgDocumentSize"`
	Indexes         int     `json:"indexes"`
	IndexSize       float64 `json:"indexSize"`
}

// StorageHistoryItem is one recorded sample from the last 30 days
type StorageHistoryItem struct {
	Timestamp     string  `json:"timestamp"`
	TotalSize     float64 `json:"totalSize"`
	DocumentCount int64   `json:"documentCount"`
}

// Storage requests storage statistics and returns the raw envelope
func (c *Client) Storage(ctx context.Context, database string) (*models.ResponseEnvelope, error) {
	if database == "" {
		return nil, fmt.Errorf("database name is required")
	}
	return c.Send(ctx, c.paths.Storage, &models.CommandEnvelope{DatabaseName: database})
}

// FetchStorageStats requests and decodes storage statistics
func (c *Client) FetchStorageStats(ctx context.Context, database string) (*StorageStats, error) {
	resp, err := c.Storage(ctx, database)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, &CommandError{Command: "storage", Response: resp}
	}
	var stats StorageStats
	if err := resp.DecodeData(&stats); err != nil {
		return nil, models.NewError(models.KindMalformedResponse, "storage", err)
	}
	return &stats, nil
}

// Ping checks that the API answers its storage test route
func (c *Client) Ping(ctx context.Context) (*models.ResponseEnvelope, error) {
	resp, err := c.GetEnvelope(ctx, c.paths.Storage+"/test")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return resp, &CommandError{Command: "ping", Response: resp}
	}
	return resp, nil
}
