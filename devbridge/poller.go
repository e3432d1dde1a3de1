package devbridge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultPollInterval matches the app's 2-second poll loop.
const DefaultPollInterval = 2 * time.Second

// Handler consumes a bridge command.
type Handler func(Command)

// PollerOption is a functional option for configuring a Poller.
type PollerOption func(*Poller)

// WithPollInterval sets the poll interval.
func WithPollInterval(interval time.Duration) PollerOption {
	return func(p *Poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithPollClient overrides the HTTP client.
func WithPollClient(client *http.Client) PollerOption {
	return func(p *Poller) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// WithPollLogger sets the logger.
func WithPollLogger(log *zap.Logger) PollerOption {
	return func(p *Poller) {
		if log != nil {
			p.log = log
		}
	}
}

// Poller polls the bridge for a pending command and clears it before
// handing it off, so a command fires exactly once. Poll errors are
// ignored; the bridge is a dev aid and the tester may not be running.
type Poller struct {
	baseURL    string
	interval   time.Duration
	handler    Handler
	httpClient *http.Client
	log        *zap.Logger
}

// NewPoller creates a poller against the bridge at baseURL.
func NewPoller(baseURL string, handler Handler, opts ...PollerOption) *Poller {
	p := &Poller{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		interval:   DefaultPollInterval,
		handler:    handler,
		httpClient: http.DefaultClient,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	cmd, err := p.fetch(ctx)
	if err != nil || cmd == "" {
		return
	}

	// Consume before handling, matching the app's poll loop.
	if err := p.clear(ctx); err != nil {
		p.log.Debug("failed to clear bridge command", zap.Error(err))
	}

	p.log.Info("bridge command received", zap.String("command", string(cmd)))
	if p.handler != nil {
		p.handler(cmd)
	}
}

func (p *Poller) fetch(ctx context.Context) (Command, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/command", nil)
	if err != nil {
		return "", err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed struct {
		Command *string `json:"command"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.Command == nil {
		return "", nil
	}
	return Command(*parsed.Command), nil
}

func (p *Poller) clear(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/clear", nil)
	if err != nil {
		return err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
	return nil
}
