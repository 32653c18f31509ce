package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

const topGGBaseURL = "https://top.gg/api"

// VoteChecker reports vote state on the bot list. Vote rewards are gated on
// having voted; weekends double the base amount.
type VoteChecker interface {
	HasVoted(ctx context.Context, discordID int64) (bool, error)
	IsWeekend(ctx context.Context) (bool, error)
}

// TopGGClient checks votes against the top.gg API
type TopGGClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	botID      string
}

// NewTopGGClient creates a top.gg client for the given bot
func NewTopGGClient(token, botID string) *TopGGClient {
	return &TopGGClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    topGGBaseURL,
		token:      token,
		botID:      botID,
	}
}

// WithBaseURL overrides the API endpoint, for tests
func (c *TopGGClient) WithBaseURL(baseURL string) *TopGGClient {
	c.baseURL = baseURL
	return c
}

// HasVoted reports whether the user voted for the bot in the last 12 hours
func (c *TopGGClient) HasVoted(ctx context.Context, discordID int64) (bool, error) {
	url := fmt.Sprintf("%s/bots/%s/check?userId=%d", c.baseURL, c.botID, discordID)

	var result struct {
		Voted int `json:"voted"`
	}
	if err := c.get(ctx, url, &result); err != nil {
		return false, err
	}
	return result.Voted > 0, nil
}

// IsWeekend reports whether top.gg is running weekend double rewards
func (c *TopGGClient) IsWeekend(ctx context.Context) (bool, error) {
	var result struct {
		IsWeekend bool `json:"is_weekend"`
	}
	if err := c.get(ctx, c.baseURL+"/weekend", &result); err != nil {
		return false, err
	}
	return result.IsWeekend, nil
}

func (c *TopGGClient) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build top.gg request: %w", err)
	}
	req.Header.Set("Authorization", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("top.gg request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warnf("top.gg returned status %d for %s", resp.StatusCode, url)
		return fmt.Errorf("top.gg returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode top.gg response: %w", err)
	}
	return nil
}
