package fediverse

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Mention is an inbound mention notification from the streaming API.
type Mention struct {
	Acct       string // sender handle
	Content    string // status content, HTML
	StatusID   string
	Visibility string
}

// Status is an outbound status post.
type Status struct {
	Text       string
	Visibility string
	InReplyTo  string
}

// MentionHandler is the callback for inbound mentions.
type MentionHandler func(mention Mention)

// Client is a minimal Mastodon-compatible API client: it posts statuses and
// streams mention notifications. Everything else the API offers is out of
// scope for this bot.
type Client struct {
	serverURL string
	token     string
	http      *http.Client
	onMention MentionHandler
}

// NewClient creates a new fediverse client
func NewClient(serverURL, token string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		token:     token,
		http:      &http.Client{},
	}
}

// OnMention sets the mention handler
func (c *Client) OnMention(handler MentionHandler) {
	c.onMention = handler
}

// PostStatus posts a status
func (c *Client) PostStatus(ctx context.Context, status Status) error {
	form := url.Values{}
	form.Set("status", status.Text)
	if status.Visibility != "" {
		form.Set("visibility", status.Visibility)
	}
	if status.InReplyTo != "" {
		form.Set("in_reply_to_id", status.InReplyTo)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.serverURL+"/api/v1/statuses", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build status request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("post status returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// Stream connects to the user notification stream and dispatches mention
// notifications to the handler until the context is cancelled. Dropped
// connections are retried with exponential backoff.
func (c *Client) Stream(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0

	for {
		err := c.streamOnce(ctx, bo)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		wait := bo.NextBackOff()
		fmt.Printf("[Fediverse] Stream disconnected (%v), reconnecting in %v\n", err, wait)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) streamOnce(ctx context.Context, bo *backoff.ExponentialBackOff) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.serverURL+"/api/v1/streaming/user", nil)
	if err != nil {
		return fmt.Errorf("failed to build stream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream returned %d", resp.StatusCode)
	}

	fmt.Println("[Fediverse] Stream connected")
	bo.Reset()

	var event, data string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			c.dispatch(event, data)
			event, data = "", ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read failed: %w", err)
	}
	return fmt.Errorf("stream closed")
}

// notificationPayload mirrors the streaming API's notification event.
type notificationPayload struct {
	Type    string `json:"type"`
	Account struct {
		Acct string `json:"acct"`
	} `json:"account"`
	Status *struct {
		ID         string `json:"id"`
		Content    string `json:"content"`
		Visibility string `json:"visibility"`
	} `json:"status"`
}

func (c *Client) dispatch(event, data string) {
	if event != "notification" || data == "" || c.onMention == nil {
		return
	}

	var payload notificationPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		fmt.Printf("[Fediverse] Bad notification payload: %v\n", err)
		return
	}
	if payload.Type != "mention" || payload.Status == nil {
		return
	}

	c.onMention(Mention{
		Acct:       payload.Account.Acct,
		Content:    payload.Status.Content,
		StatusID:   payload.Status.ID,
		Visibility: payload.Status.Visibility,
	})
}
