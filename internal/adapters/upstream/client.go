// Package upstream fetches entity pages and data from the host site.
//
// Requests carry no timeout of their own; a caller bounds them through the
// context it passes in.
package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/trainhist/internal/domain/classify"
	"github.com/okian/trainhist/internal/domain/model"
	"github.com/okian/trainhist/internal/domain/season"
	"github.com/okian/trainhist/internal/domain/transfer"
	"github.com/okian/trainhist/pkg/logger"
	"github.com/okian/trainhist/pkg/metrics"
)

// Fetch sources, used as metric and log labels.
const (
	SourceTraining  = "training"
	SourceScout     = "scout"
	SourceTransfers = "transfers"
	SourceProfile   = "profile"
	SourceAnchor    = "anchor"
)

const (
	defaultBaseURL = "https://www.managerzone.com"
	defaultSport   = "soccer"
	maxBodyBytes   = 8 << 20
)

// Client talks to the host site over HTTP.
type Client struct {
	baseURL  string
	sport    string
	http     *http.Client
	log      logger.Logger
	location *time.Location
}

// New builds a client. The default http.Client has no timeout.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:  defaultBaseURL,
		sport:    defaultSport,
		http:     &http.Client{},
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Discard()
	}
	return c
}

// TrainingSeries fetches and decodes the raw training series of an entity.
func (c *Client) TrainingSeries(ctx context.Context, id string) ([]model.RawSeries, error) {
	body, err := c.get(ctx, SourceTraining, "/ajax.php", url.Values{
		"p":         {"trainingGraph"},
		"sub":       {"getJsonTrainingHistory"},
		"sport":     {c.sport},
		"player_id": {id},
	})
	if err != nil {
		return nil, err
	}
	series, err := classify.ExtractSeries(string(body))
	if err != nil {
		metrics.RecordFetchFailure(SourceTraining)
		return nil, err
	}
	return series, nil
}

// Scout fetches the scout report page of an entity.
func (c *Client) Scout(ctx context.Context, id string) (ScoutPage, error) {
	body, err := c.get(ctx, SourceScout, "/ajax.php", url.Values{
		"p":     {"players"},
		"sub":   {"scout_report"},
		"pid":   {id},
		"sport": {c.sport},
	})
	if err != nil {
		return ScoutPage{}, err
	}
	return ExtractScout(bytes.NewReader(body))
}

// Transfers fetches the transfer rows listed on the entity page.
func (c *Client) Transfers(ctx context.Context, id string) ([]transfer.Row, error) {
	body, err := c.get(ctx, SourceTransfers, "/", url.Values{"p": {"players"}, "pid": {id}})
	if err != nil {
		return nil, err
	}
	return ExtractTransfers(bytes.NewReader(body))
}

// Profile fetches name, age and current skills from the entity page.
func (c *Client) Profile(ctx context.Context, id string) (Profile, error) {
	body, err := c.get(ctx, SourceProfile, "/", url.Values{"p": {"players"}, "pid": {id}})
	if err != nil {
		return Profile{}, err
	}
	return ExtractProfile(bytes.NewReader(body))
}

// Anchor reads the current season anchor from the site header.
func (c *Client) Anchor(ctx context.Context) (season.Anchor, error) {
	body, err := c.get(ctx, SourceAnchor, "/", nil)
	if err != nil {
		return season.Anchor{}, fmt.Errorf("%w: %w", season.ErrAnchorUnavailable, err)
	}
	return ExtractAnchor(bytes.NewReader(body), c.location)
}

func (c *Client) get(ctx context.Context, source, path string, q url.Values) ([]byte, error) {
	target := strings.TrimRight(c.baseURL, "/") + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.RecordFetchLatency(source, float64(time.Since(start).Nanoseconds())/1e6)
	if err != nil {
		metrics.RecordFetchFailure(source)
		c.log.Debug(ctx, "upstream fetch failed", logger.String("source", source), logger.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", ErrRequest, source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordFetchFailure(source)
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w: %s: status %d", ErrStatus, source, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.RecordFetchFailure(source)
		return nil, fmt.Errorf("%w: %s: %w", ErrRequest, source, err)
	}
	return body, nil
}
