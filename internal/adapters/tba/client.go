// Package tba is a thin client for TheBlueAlliance v3 API, used to load an
// event's match schedule.
package tba

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/openscout/scoutcore/internal/domain/model"
)

const defaultBaseURL = "https://www.thebluealliance.com/api/v3"

// Client fetches event schedules from TheBlueAlliance.
type Client struct {
	baseURL string
	authKey string
	client  *http.Client
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL, mainly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// New creates a client with the given auth key.
func New(authKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		authKey: authKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// tbaMatch mirrors the relevant slice of the TBA simple match schema.
type tbaMatch struct {
	Key         string `json:"key"`
	CompLevel   string `json:"comp_level"`
	MatchNumber int    `json:"match_number"`
	Time        int64  `json:"time"`
	WinningAll  string `json:"winning_alliance"`
	Alliances   struct {
		Red  tbaAlliance `json:"red"`
		Blue tbaAlliance `json:"blue"`
	} `json:"alliances"`
}

type tbaAlliance struct {
	Score    int      `json:"score"`
	TeamKeys []string `json:"team_keys"`
}

// EventMatches fetches the match schedule for one event key, retrying
// transient failures with exponential backoff. Rate-limit responses retry;
// other non-200 statuses fail immediately.
func (c *Client) EventMatches(ctx context.Context, eventKey string) ([]model.Match, error) {
	url := fmt.Sprintf("%s/event/%s/matches/simple", c.baseURL, eventKey)

	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("X-TBA-Auth-Key", c.authKey)

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetch matches: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("rate limited: status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(fmt.Errorf("fetch matches: status %d: %s", resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}

	var raw []tbaMatch
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode matches: %w", err)
	}

	matches := make([]model.Match, 0, len(raw))
	for _, m := range raw {
		matches = append(matches, model.Match{
			Key:         m.Key,
			EventKey:    eventKey,
			CompLevel:   m.CompLevel,
			MatchNumber: m.MatchNumber,
			Time:        m.Time,
			RedTeams:    m.Alliances.Red.TeamKeys,
			BlueTeams:   m.Alliances.Blue.TeamKeys,
			Winner:      m.WinningAll,
			RedScore:    m.Alliances.Red.Score,
			BlueScore:   m.Alliances.Blue.Score,
		})
	}
	return matches, nil
}
