package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/vornify-cli/internal/models"
)

// Payment commands understood by the VornifyPay service
const (
	PayPayment              = "payment"
	PaySubscription         = "subscription"
	PayVerify               = "verify"
	PayCreateSubscription   = "create_subscription"
	PayCompleteSubscription = "complete_subscription"
)

// PaymentRequest is a one-time or recurring payment
type PaymentRequest struct {
	Amount      float64                `json:"amount"`
	Currency    string                 `json:"currency"`
	PaymentType string                 `json:"payment_type"`
	ProductData map[string]interface{} `json:"product_data"`
}

// Validate checks the fields the payment service requires
func (p PaymentRequest) Validate() error {
	var missing []string
	if p.Amount <= 0 {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(p.Currency) == "" {
		missing = append(missing, "currency")
	}
	if p.PaymentType == "" {
		missing = append(missing, "payment_type")
	}
	if len(p.ProductData) == 0 {
		missing = append(missing, "product_data")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if p.PaymentType != "onetime" && p.PaymentType != "recurring" {
		return fmt.Errorf("invalid payment_type %q: must be onetime or recurring", p.PaymentType)
	}
	return nil
}

func (p PaymentRequest) data() map[string]interface{} {
	return map[string]interface{}{
		"amount":       p.Amount,
		"currency":     strings.ToLower(p.Currency),
		"payment_type": p.PaymentType,
		"product_data": p.ProductData,
	}
}

// PaymentResult is returned for a created payment intent
type PaymentResult struct {
	PaymentIntentID string                 `json:"payment_intent_id"`
	ClientSecret    string                 `json:"client_secret"`
	PublicKey       string                 `json:"public_key"`
	Amount          float64                `json:"amount"`
	Currency        string                 `json:"currency"`
	PaymentType     string                 `json:"payment_type"`
	ProductDetails  map[string]interface{} `json:"product_details"`
}

// SubscriptionRequest starts a recurring subscription
type SubscriptionRequest struct {
	CustomerEmail string                 `json:"customer_email"`
	PriceID       string                 `json:"price_id"`
	TrialDays     int                    `json:"trial_days,omitempty"`
	ProductData   map[string]interface{} `json:"product_data"`
}

// Validate checks the fields the subscription service requires
func (s SubscriptionRequest) Validate() error {
	var missing []string
	if s.CustomerEmail == "" {
		missing = append(missing, "customer_email")
	}
	if s.PriceID == "" {
		missing = append(missing, "price_id")
	}
	if len(s.ProductData) == 0 {
		missing = append(missing, "product_data")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if !strings.HasPrefix(s.PriceID, "price_") {
		return fmt.Errorf("invalid price_id %q: must start with price_", s.PriceID)
	}
	return nil
}

func (s SubscriptionRequest) data() map[string]interface{} {
	d := map[string]interface{}{
		"customer_email": s.CustomerEmail,
		"price_id":       s.PriceID,
		"product_data":   s.ProductData,
	}
	if s.TrialDays > 0 {
		d["trial_days"] = s.TrialDays
	}
	return d
}

// SubscriptionResult is returned for a created subscription
type SubscriptionResult struct {
	SubscriptionID   string                 `json:"subscription_id"`
	ClientSecret     string                 `json:"client_secret"`
	PublicKey        string                 `json:"public_key"`
	CustomerID       string                 `json:"customer_id"`
	TrialEnd         int64                  `json:"trial_end"`
	CurrentPeriodEnd int64                  `json:"current_period_end"`
	ProductDetails   map[string]interface{} `json:"product_details"`
}

// Pay sends a payment command and returns the raw envelope
func (c *Client) Pay(ctx context.Context, command string, data map[string]interface{}) (*models.ResponseEnvelope, error) {
	return c.Send(ctx, c.paths.Payment, models.NewCommand(command, data))
}

func (c *Client) payInto(ctx context.Context, command string, data map[string]interface{}, dest interface{}) (*models.ResponseEnvelope, error) {
	resp, err := c.Pay(ctx, command, data)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return resp, &CommandError{Command: command, Response: resp}
	}
	if dest != nil {
		if err := resp.DecodeData(dest); err != nil {
			return resp, models.NewError(models.KindMalformedResponse, command, err)
		}
	}
	return resp, nil
}

// CreatePayment creates a payment intent
func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out PaymentResult
	if _, err := c.payInto(ctx, PayPayment, req.data(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSubscription creates a subscription for a price
func (c *Client) CreateSubscription(ctx context.Context, req SubscriptionRequest) (*SubscriptionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out SubscriptionResult
	if _, err := c.payInto(ctx, PaySubscription, req.data(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyPayment returns the verification payload for a payment intent
func (c *Client) VerifyPayment(ctx context.Context, paymentIntentID string) (*models.ResponseEnvelope, error) {
	if paymentIntentID == "" {
		return nil, fmt.Errorf("payment_intent_id is required")
	}
	return c.payInto(ctx, PayVerify, map[string]interface{}{"payment_intent_id": paymentIntentID}, nil)
}
