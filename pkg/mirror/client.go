package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shuliakovsky/relay-admin/pkg/health"
	"github.com/shuliakovsky/relay-admin/pkg/secrets"
)

const fetchTimeout = 10 * time.Second

var ErrInvalidPayload = errors.New("invalid relays payload")

// Client reads the published copy of relays.json. It never writes back.
type Client struct {
	URL    string
	Token  string
	HTTP   *http.Client
	Logger *zap.Logger
}

func New(url, token string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		URL:    url,
		Token:  token,
		HTTP:   &http.Client{Timeout: fetchTimeout},
		Logger: logger,
	}
}

func (c *Client) Enabled() bool { return c != nil && c.URL != "" }

func (c *Client) Fetch(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", health.UserAgent)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Logger.Warn("mirror_request_error",
			zap.String("url", c.URL),
			zap.Any("headers", secrets.RedactHeaders(flatten(req.Header))),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var out struct {
		Relays []string `json:"relays"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Relays == nil {
		return nil, ErrInvalidPayload
	}

	c.Logger.Info("mirror_fetched", zap.String("url", c.URL), zap.Int("relays", len(out.Relays)))
	return out.Relays, nil
}

func flatten(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}
