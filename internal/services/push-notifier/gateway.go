package pushnotifier

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	config "github.com/snapfeed/snapfeed/internal/config/push-notifier"
)

// Gateway posts notifications to an external push provider over HTTP.
// It implements notification.PushSender.
type Gateway struct {
	c   *http.Client
	cfg config.Push
}

func NewGateway(cfg config.Push) *Gateway {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !cfg.VerifyTLS,
			MinVersion:         tls.VersionTLS12,
		},
	}
	return &Gateway{
		c:   &http.Client{Timeout: cfg.Timeout, Transport: transport},
		cfg: cfg,
	}
}

type pushPayload struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

func (g *Gateway) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	buf, err := json.Marshal(pushPayload{To: token, Title: title, Body: body, Data: data})
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.URL, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.Key != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.Key)
	}
	resp, err := g.c.Do(req)
	if err != nil {
		return fmt.Errorf("push request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("push gateway returned %d", resp.StatusCode)
	}
	return nil
}
