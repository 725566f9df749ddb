// Package assistant calls an OpenRouter-compatible chat completion API for
// the optional helper features: keyword rewrites for empty searches,
// category suggestions, event commentary and free-form chat. Every caller
// treats assistant failures as non-fatal; a broken or unconfigured
// assistant never degrades search itself.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/go-resty/resty/v2"

	"github.com/pulsepoly/pulsepoly/internal/httpx"
	"github.com/pulsepoly/pulsepoly/internal/models"
)

// ErrDisabled is returned by every method when no API key is configured.
var ErrDisabled = errors.New("assistant disabled: no API key")

type Client struct {
	rc    *resty.Client
	model string
}

// NewClient builds an assistant client. An empty apiKey yields a client
// whose methods all return ErrDisabled.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if apiKey == "" {
		return &Client{model: model}
	}
	rc := httpx.New(baseURL, timeout).
		SetHeader("Authorization", "Bearer "+apiKey)
	return &Client{rc: rc, model: model}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

func (c *Client) complete(ctx context.Context, req chatRequest) (string, error) {
	if c.rc == nil {
		return "", ErrDisabled
	}
	req.Model = c.model

	body, err := httpx.Post(ctx, c.rc, "/chat/completions", req)
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", errors.Wrap(err, "decode completion")
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// SuggestKeyword turns a natural-language query into a single search
// keyword. The reply is sanitized down to one lowercase word; an empty
// string means the model produced nothing usable.
func (c *Client) SuggestKeyword(ctx context.Context, query string) (string, error) {
	reply, err := c.complete(ctx, chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: "You convert prediction market search queries into a single lowercase English keyword. Reply with exactly one word and nothing else."},
			{Role: "user", Content: query},
		},
		Temperature: 0.2,
		MaxTokens:   10,
	})
	if err != nil {
		return "", err
	}
	return sanitizeKeyword(reply), nil
}

// SuggestCategory picks the best matching category id for a query, or
// "all" when none applies. Replies outside the catalog collapse to "all".
func (c *Client) SuggestCategory(ctx context.Context, query string, categories []models.Category) (string, error) {
	ids := make([]string, 0, len(categories))
	for _, cat := range categories {
		ids = append(ids, cat.ID)
	}

	reply, err := c.complete(ctx, chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: fmt.Sprintf(
				"You map prediction market queries onto one of these category ids: %s. Reply with exactly one id from the list, or the word all if none fits.",
				strings.Join(ids, ", "))},
			{Role: "user", Content: query},
		},
		Temperature: 0.2,
		MaxTokens:   10,
	})
	if err != nil {
		return "", err
	}

	reply = sanitizeKeyword(reply)
	for _, id := range ids {
		if reply == id {
			return id, nil
		}
	}
	return "all", nil
}

// Commentary produces a short structured analysis of one event.
func (c *Client) Commentary(ctx context.Context, ev *models.Event) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Market: %s\n", ev.Title)
	if ev.Description != "" {
		fmt.Fprintf(&sb, "Details: %s\n", ev.Description)
	}
	if ev.Volume > 0 {
		fmt.Fprintf(&sb, "Volume: $%.0f\n", ev.Volume)
	}
	if ev.EndDate != nil {
		fmt.Fprintf(&sb, "Resolves: %s\n", ev.EndDate.Format("2006-01-02"))
	}
	for _, o := range ev.TopOutcomes(5) {
		fmt.Fprintf(&sb, "Outcome: %s at %d%%\n", o.Name, o.Percent)
	}

	return c.complete(ctx, chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: "You are a prediction market analyst. Given a market and its current odds, reply with three short sections titled '📊 Prediction', '⭐ Favored Outcome' and '🔮 Outlook'. Be concrete and base everything on the provided odds. Keep the whole reply under 120 words."},
			{Role: "user", Content: sb.String()},
		},
		Temperature: 0.7,
		MaxTokens:   300,
	})
}

// Chat answers a free-form question about prediction markets.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	return c.complete(ctx, chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: "You are a helpful assistant for a prediction market browser. Answer questions about markets, odds and trading concepts plainly and briefly."},
			{Role: "user", Content: message},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	})
}

// sanitizeKeyword reduces a model reply to one clean lowercase word:
// quotes and surrounding punctuation are stripped and only the first
// whitespace-separated token survives.
func sanitizeKeyword(reply string) string {
	reply = strings.ToLower(strings.TrimSpace(reply))
	reply = strings.NewReplacer(`"`, "", "'", "", "`", "").Replace(reply)
	fields := strings.Fields(reply)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], ".,;:!?()[]")
}
