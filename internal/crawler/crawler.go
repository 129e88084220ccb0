// Package crawler fetches normalized opportunity records from external
// listing sites. Every source is best-effort: network or markup failures
// yield an empty batch, never a pipeline error.
package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/career-pathfinder/pathfinder/internal/domain"
)

const (
	defaultUserAgent = "CareerPathfinderBot/1.0 (+career-pathfinder)"
	requestTimeout   = 15 * time.Second
)

// Source produces normalized opportunities for one keyword, capped at limit.
type Source interface {
	Name() string
	Fetch(ctx context.Context, keyword string, limit int) ([]domain.Opportunity, error)
}

// Client is the shared HTTP base for the scrapers.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	logger     *zap.Logger
}

func NewClient(logger *zap.Logger) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: requestTimeout},
		UserAgent:  defaultUserAgent,
		logger:     logger,
	}
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)

	c.logger.Debug("make request", zap.String("url", rawURL))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	return resp, nil
}

var idParam = regexp.MustCompile(`[?&](?:id|no|seq)=([^&#]+)`)

// extractID pulls a source-local id out of a listing URL, falling back to
// the URL itself so identity keys never collapse to empty.
func extractID(rawURL string) string {
	if m := idParam.FindStringSubmatch(rawURL); m != nil {
		return m[1]
	}
	return rawURL
}

func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
