package client

import (
	"context"
	"fmt"

	"github.com/yourusername/vornify-cli/internal/models"
)

// EmailRequest is the body accepted by the email endpoint
type EmailRequest struct {
	ToEmail  string `json:"to_email"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
}

// EmailResult is returned for a sent email
type EmailResult struct {
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
	Timestamp string `json:"timestamp"`
}

// SendEmail asks the email service to deliver an HTML message
func (c *Client) SendEmail(ctx context.Context, req EmailRequest) (*EmailResult, error) {
	if req.ToEmail == "" || req.Subject == "" || req.HTMLBody == "" {
		return nil, fmt.Errorf("missing required fields: to_email, subject, or html_body")
	}
	resp, err := c.PostJSON(ctx, c.paths.Email, req)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, &CommandError{Command: "email", Response: resp}
	}
	out := &EmailResult{Message: resp.Message}
	if len(resp.Data) > 0 {
		if err := resp.DecodeData(out); err != nil {
			return nil, models.NewError(models.KindMalformedResponse, "email", err)
		}
		if out.Message == "" {
			out.Message = resp.Message
		}
	}
	return out, nil
}

// EmailStatus reports whether the email service can reach its SMTP server
func (c *Client) EmailStatus(ctx context.Context) (*models.ResponseEnvelope, error) {
	return c.GetEnvelope(ctx, c.paths.Email+"/test")
}
