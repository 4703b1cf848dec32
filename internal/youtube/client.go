// Package youtube provides a minimal client for the YouTube Data API search endpoint.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"ou-videos-mcp/internal/video"
)

// DefaultBaseURL is the public YouTube Data API v3 root.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

const watchURL = "https://www.youtube.com/watch?v="

// Client is a minimal HTTP client for YouTube video search.
type Client struct {
	BaseURL   string
	APIKey    string
	ChannelID string
	HTTP      *http.Client
}

// New returns a new client. If httpClient is nil, a default with 15s timeout is used.
func New(baseURL, apiKey, channelID string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		APIKey:    apiKey,
		ChannelID: channelID,
		HTTP:      httpClient,
	}
}

// Query performs one search.list call and returns normalized records.
// YouTube has no sport field, so a sport filter is folded into the search terms.
func (c *Client) Query(ctx context.Context, q video.Query) ([]video.Record, error) {
	if c.APIKey == "" {
		return nil, errors.New("youtube api key missing")
	}
	reqURL, err := c.buildSearchURL(q)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "youtube request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp)
	}
	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "decoding youtube response")
	}
	return normalize(body.Items, q.Sport), nil
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		ChannelTitle string `json:"channelTitle"`
		PublishedAt  string `json:"publishedAt"`
	} `json:"snippet"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// statusError prefers the message from the API's error envelope.
func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var e apiError
	if json.Unmarshal(data, &e) == nil && e.Error.Message != "" {
		return fmt.Errorf("youtube api status %d: %s", resp.StatusCode, e.Error.Message)
	}
	return fmt.Errorf("youtube api status %d", resp.StatusCode)
}

// buildSearchURL composes the search URL with query params.
func (c *Client) buildSearchURL(q video.Query) (string, error) {
	u, err := url.Parse(c.BaseURL + "/search")
	if err != nil {
		return "", errors.Wrap(err, "invalid base url")
	}
	v := u.Query()
	v.Set("key", c.APIKey)
	v.Set("part", "snippet")
	v.Set("type", "video")
	v.Set("maxResults", strconv.Itoa(q.Limit))
	if c.ChannelID != "" {
		v.Set("channelId", c.ChannelID)
	}
	if terms := strings.TrimSpace(strings.Join([]string{q.Text, q.Sport}, " ")); terms != "" {
		v.Set("q", terms)
	}
	if q.Order == video.OrderViews {
		v.Set("order", "viewCount")
	} else {
		v.Set("order", "date")
	}
	if !q.Since.IsZero() {
		v.Set("publishedAfter", q.Since.UTC().Format(time.RFC3339))
	}
	u.RawQuery = v.Encode()
	return u.String(), nil
}

func normalize(items []searchItem, sport string) []video.Record {
	out := make([]video.Record, 0, len(items))
	for _, it := range items {
		rec := video.Record{
			Title:         it.Snippet.Title,
			ChannelTitle:  it.Snippet.ChannelTitle,
			PublishedDate: parseTime(it.Snippet.PublishedAt),
			Sport:         sport,
		}
		if it.ID.VideoID != "" {
			rec.URL = watchURL + it.ID.VideoID
		}
		out = append(out, rec)
	}
	return out
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
