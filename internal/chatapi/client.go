// Package chatapi is the typed REST client for the messaging service.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"mentorlink/backend/internal/models"
)

// Client talks to the messaging service's REST surface with bearer auth.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchToken obtains an anonymous identity and bearer token from the
// service. Used by clients that do not already carry credentials.
func FetchToken(ctx context.Context, baseURL string) (token, userID string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/token", nil)
	if err != nil {
		return "", "", err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("chatapi: token request returned %s", resp.Status)
	}

	var body struct {
		Token  string `json:"token"`
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", "", err
	}
	return body.Token, body.UserID, nil
}

// ListConversations returns the caller's conversations, newest activity first.
func (c *Client) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	var convs []models.Conversation
	if err := c.do(ctx, http.MethodGet, "/conversations", nil, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// CreateConversation opens (or returns the existing) conversation with the
// given mentor.
func (c *Client) CreateConversation(ctx context.Context, mentorID string) (*models.Conversation, error) {
	path := "/conversations?mentor_id=" + url.QueryEscape(mentorID)
	var conv models.Conversation
	if err := c.do(ctx, http.MethodPost, path, nil, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListMessages fetches the point-in-time snapshot of a conversation's
// history, already ordered by the server.
func (c *Client) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	var msgs []models.Message
	path := "/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := c.do(ctx, http.MethodGet, path, nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// CreateMessage submits a new message. The created message is returned for
// completeness, but delivery into the visible log happens over the push
// channel.
func (c *Client) CreateMessage(ctx context.Context, conversationID, content string) (*models.Message, error) {
	payload := map[string]string{
		"conversation_id": conversationID,
		"content":         content,
	}
	var msg models.Message
	if err := c.do(ctx, http.MethodPost, "/messages", payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("chatapi: %s %s returned %s", method, path, resp.Status)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
