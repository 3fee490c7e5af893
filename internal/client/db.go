package client

import (
	"context"
	"fmt"

	"github.com/yourusername/vornify-cli/internal/models"
)

// Database commands understood by the VornifyDB service. The list is not
// exhaustive; DB forwards any tag unchanged.
const (
	CmdCreate      = "--create"
	CmdRead        = "--read"
	CmdUpdate      = "--update"
	CmdDelete      = "--delete"
	CmdVerify      = "--verify"
	CmdAppend      = "--append"
	CmdUpdateField = "--update-field"
	CmdDeleteField = "--delete-field"
	CmdCreateVideo = "--create_video"
	CmdGetVideo    = "--get_video"
)

// CommandError is returned by the typed helpers when the service answered
// with a failure outcome
type CommandError struct {
	Command  string
	Response *models.ResponseEnvelope
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("server error for %s: %s", e.Command, e.Response.GetError())
}

// DB sends a database command and returns the raw envelope, whatever its outcome
func (c *Client) DB(ctx context.Context, database, collection, command string, data map[string]interface{}) (*models.ResponseEnvelope, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection name is required")
	}
	env := models.NewDBCommand(database, collection, command, data)
	return c.Send(ctx, c.paths.DB, env)
}

// call runs a database command and turns a failure outcome into a CommandError
func (c *Client) call(ctx context.Context, database, collection, command string, data map[string]interface{}) (*models.ResponseEnvelope, error) {
	resp, err := c.DB(ctx, database, collection, command, data)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return resp, &CommandError{Command: command, Response: resp}
	}
	return resp, nil
}

// Create inserts a record
func (c *Client) Create(ctx context.Context, database, collection string, data map[string]interface{}) (*models.ResponseEnvelope, error) {
	return c.call(ctx, database, collection, CmdCreate, data)
}

// Read fetches records matching data (all records when data is empty)
func (c *Client) Read(ctx context.Context, database, collection string, query map[string]interface{}) (*models.ResponseEnvelope, error) {
	return c.call(ctx, database, collection, CmdRead, query)
}

// Update replaces fields of a record
func (c *Client) Update(ctx context.Context, database, collection string, data map[string]interface{}) (*models.ResponseEnvelope, error) {
	return c.call(ctx, database, collection, CmdUpdate, data)
}

// Delete removes a record
func (c *Client) Delete(ctx context.Context, database, collection string, query map[string]interface{}) (*models.ResponseEnvelope, error) {
	return c.call(ctx, database, collection, CmdDelete, query)
}

// Append pushes values onto array fields
func (c *Client) Append(ctx context.Context, database, collection string, data map[string]interface{}) (*models.ResponseEnvelope, error) {
	return c.call(ctx, database, collection, CmdAppend, data)
}

// UpdateField sets a single field
func (c *Client) UpdateField(ctx context.Context, database, collection string, data map[string]interface{}) (*models.ResponseEnvelope, error) {
	return c.call(ctx, database, collection, CmdUpdateField, data)
}

// DeleteField unsets a single field
func (c *Client) DeleteField(ctx context.Context, database, collection string, data map[string]interface{}) (*models.ResponseEnvelope, error) {
	return c.call(ctx, database, collection, CmdDeleteField, data)
}

// Verify reports whether a record matching query exists
func (c *Client) Verify(ctx context.Context, database, collection string, query map[string]interface{}) (bool, error) {
	resp, err := c.call(ctx, database, collection, CmdVerify, query)
	if err != nil {
		return false, err
	}
	var result struct {
		Acknowledged bool `json:"acknowledged"`
	}
	if len(resp.Data) == 0 {
		return false, nil
	}
	if err := resp.DecodeData(&result); err != nil {
		return false, models.NewError(models.KindMalformedResponse, CmdVerify, err)
	}
	return result.Acknowledged, nil
}
