package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/asinbot/internal/netclient"
)

const (
	// DefaultBaseURL is the public Bot API endpoint.
	DefaultBaseURL = "https://api.telegram.org"

	// DefaultRequestTimeout bounds every call except the long-poll wait itself.
	DefaultRequestTimeout = 30 * time.Second

	// maxResponseSize caps Bot API response bodies.
	maxResponseSize = 4 * 1024 * 1024
)

// Client calls the Telegram Bot API.
type Client struct {
	baseURL string
	token   string
	clients *netclient.Factory
	timeout time.Duration
	logger  *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the Bot API endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithRequestTimeout sets the per-request timeout.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithClientLogger sets the logger.
func WithClientLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client for the bot identified by token.
func NewClient(token string, clients *netclient.Factory, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		clients: clients,
		timeout: DefaultRequestTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) methodURL(method string) string {
	return c.baseURL + "/bot" + c.token + "/" + method
}

// GetMe returns the bot's own user. It doubles as a cheap health probe.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var me User
	if err := c.callJSON(ctx, "getMe", nil, c.timeout, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// GetUpdates long-polls for new messages starting at offset, waiting up to
// wait for one to arrive. It returns the updates and the offset to use next.
func (c *Client) GetUpdates(ctx context.Context, offset int64, wait time.Duration) ([]Update, int64, error) {
	req := getUpdatesRequest{
		Offset:         offset,
		Timeout:        int(wait / time.Second),
		AllowedUpdates: []string{"message"},
	}

	var updates []Update
	if err := c.callJSON(ctx, "getUpdates", req, wait+c.timeout, &updates); err != nil {
		return nil, offset, err
	}

	next := offset
	for _, u := range updates {
		if u.UpdateID >= next {
			next = u.UpdateID + 1
		}
	}
	return updates, next, nil
}

// SendMessage sends text to chatID. An empty parseMode sends plain text.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text, parseMode string) error {
	req := sendMessageRequest{ChatID: chatID, Text: text, ParseMode: parseMode}
	var msg Message
	return c.callJSON(ctx, "sendMessage", req, c.timeout, &msg)
}

// SendPhoto uploads a photo with a caption to chatID.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, filename string, data []byte, caption, parseMode string) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := map[string]string{
		"chat_id": strconv.FormatInt(chatID, 10),
		"caption": caption,
	}
	if parseMode != "" {
		fields["parse_mode"] = parseMode
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("sendPhoto: %w", err)
		}
	}

	part, err := mw.CreateFormFile("photo", filename)
	if err != nil {
		return fmt.Errorf("sendPhoto: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("sendPhoto: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("sendPhoto: %w", err)
	}

	var msg Message
	return c.call(ctx, "sendPhoto", mw.FormDataContentType(), &body, c.timeout, &msg)
}

func (c *Client) callJSON(ctx context.Context, method string, payload any, timeout time.Duration, result any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("%s: %w", method, err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.call(ctx, method, contentType, body, timeout, result)
}

func (c *Client) call(ctx context.Context, method, contentType string, body io.Reader, timeout time.Duration, result any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpMethod := http.MethodGet
	if body != nil {
		httpMethod = http.MethodPost
	}
	req, err := http.NewRequestWithContext(ctx, httpMethod, c.methodURL(method), body)
	if err != nil {
		return fmt.Errorf("%s: %w", method, stripURL(err))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	client := c.clients.New(timeout)
	defer client.CloseIdleConnections()

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, stripURL(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%s: failed to read response: %w", method, err)
	}

	var envelope apiResponse[json.RawMessage]
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("%s: status %d: failed to decode response: %w", method, resp.StatusCode, err)
	}
	if !envelope.OK {
		return fmt.Errorf("%s: %d %s: %w", method, envelope.ErrorCode, envelope.Description, ErrAPI)
	}
	if result == nil || len(envelope.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return fmt.Errorf("%s: failed to decode result: %w", method, err)
	}

	c.logger.Debug("telegram call completed", "method", method, "status", resp.StatusCode)
	return nil
}

// stripURL drops the request URL, which embeds the token, from transport errors.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}
