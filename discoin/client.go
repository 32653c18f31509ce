// Package discoin implements the client for the Discoin cross-bot currency
// exchange network.
package discoin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Yureien/PinocchioBot/models"
)

const defaultBaseURL = "https://discoin.zws.im"

// Client talks to the Discoin REST API. It implements the
// service.ExchangePartner interface.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	currency   string
}

// NewClient creates a Discoin client. The token authorizes this bot; the
// currency is the code of the bot's own currency.
func NewClient(token, currency string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		token:      token,
		currency:   currency,
	}
}

// WithBaseURL overrides the API endpoint, used in tests
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

type transactionRequest struct {
	Amount int64  `json:"amount"`
	To     string `json:"toId"`
	User   string `json:"user"`
}

type transactionResponse struct {
	ID     string  `json:"id"`
	Payout float64 `json:"payout"`
	To     struct {
		ID string `json:"id"`
	} `json:"to"`
}

// CreateTransaction converts the given amount of this bot's currency into
// the target currency for the member
func (c *Client) CreateTransaction(ctx context.Context, currency string, amount int64, memberID int64) (*models.ExchangeReceipt, error) {
	payload, err := json.Marshal(transactionRequest{
		Amount: amount,
		To:     currency,
		User:   fmt.Sprintf("%d", memberID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transactions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transaction request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithFields(log.Fields{
			"status":   resp.StatusCode,
			"currency": currency,
			"amount":   amount,
		}).Warn("Discoin transaction rejected")
		return nil, fmt.Errorf("discoin returned status %d: %s", resp.StatusCode, body)
	}

	var tx transactionResponse
	if err := json.Unmarshal(body, &tx); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &models.ExchangeReceipt{
		TransactionID: tx.ID,
		Currency:      currency,
		Amount:        amount,
		Payout:        tx.Payout,
	}, nil
}
