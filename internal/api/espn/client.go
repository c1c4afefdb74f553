package espn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/omarshaarawi/ffstats/internal/config"
)

type Client struct {
	httpClient *http.Client
	Config     config.ESPN
	retryDelay time.Duration
}

func NewClient(cfg config.ESPN) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		Config:     cfg,
		retryDelay: 2 * time.Second,
	}
}

// Get fetches a league page and parses it. leagueId and seasonId are always
// set. A transport error or 5xx response is retried once.
func (c *Client) Get(ctx context.Context, page string, params map[string]string) (*goquery.Document, error) {
	u := fmt.Sprintf("%s/%s", strings.TrimRight(c.Config.BaseURL, "/"), page)

	q := url.Values{}
	q.Set("leagueId", c.Config.LeagueID)
	q.Set("seasonId", c.Config.Year)
	for key, value := range params {
		q.Set(key, value)
	}

	doc, err := c.fetch(ctx, u, q)
	if errors.Is(err, errRetryable) {
		slog.Warn("Retrying ESPN page", "page", page, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
		doc, err = c.fetch(ctx, u, q)
	}
	return doc, err
}

var errRetryable = errors.New("temporary failure")

func (c *Client) fetch(ctx context.Context, u string, q url.Values) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.URL.RawQuery = q.Encode()
	c.setCookies(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("error making request: %w: %w", errRetryable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("unexpected status code %d: %w", resp.StatusCode, errRetryable)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error parsing page: %w", err)
	}
	return doc, nil
}

// Private leagues need both cookies; public ones work without.
func (c *Client) setCookies(req *http.Request) {
	if c.Config.SWID == "" && c.Config.ESPNS2 == "" {
		return
	}
	cookie := fmt.Sprintf("SWID=%s; espn_s2=%s", c.Config.SWID, c.Config.ESPNS2)
	req.Header.Set("Cookie", cookie)
}
