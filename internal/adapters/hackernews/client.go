// Package hackernews reads stories from the Hacker News Firebase API and web site.
package hackernews

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/bnema/hnglance/internal/domain"
	"github.com/bnema/hnglance/internal/ports"
	"golang.org/x/net/html/charset"
)

const (
	DefaultAPIURL = "https://hacker-news.firebaseio.com/v0"
	DefaultWebURL = "https://news.ycombinator.com"

	defaultTimeout      = 30 * time.Second
	defaultMaxPageBytes = 5 << 20
	defaultUserAgent    = "hnglance"
	maxRedirects        = 5
)

var ErrUnsupportedContent = errors.New("unsupported content type")

type Config struct {
	APIURL       string
	WebURL       string
	Timeout      time.Duration
	MaxPageBytes int64
	UserAgent    string
}

func (c *Config) defaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.WebURL == "" {
		c.WebURL = DefaultWebURL
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	c.WebURL = strings.TrimRight(c.WebURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxPageBytes <= 0 {
		c.MaxPageBytes = defaultMaxPageBytes
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
}

type Client struct {
	http     *http.Client
	config   Config
	markdown *converter.Converter
}

var _ ports.StoryFetcher = (*Client)(nil)

func NewClient(cfg Config) *Client {
	cfg.defaults()

	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				return nil
			},
		},
		config: cfg,
		markdown: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

type itemPayload struct {
	ID          int64   `json:"id"`
	By          string  `json:"by"`
	Descendants int     `json:"descendants"`
	Dead        bool    `json:"dead"`
	Deleted     bool    `json:"deleted"`
	Kids        []int64 `json:"kids"`
	Score       int     `json:"score"`
	Time        int64   `json:"time"`
	Title       string  `json:"title"`
	Type        string  `json:"type"`
	URL         string  `json:"url"`
}

// FetchStory returns the item's metadata. The API answers null for unknown ids; that is reported
// as a deleted item so the caller drops it.
func (c *Client) FetchStory(ctx context.Context, id domain.ItemID) (domain.StoryInfo, error) {
	var payload *itemPayload
	if err := c.getJSON(ctx, c.config.APIURL+"/item/"+id.String()+".json", &payload); err != nil {
		return domain.StoryInfo{}, fmt.Errorf("fetch item %s: %w", id, err)
	}
	if payload == nil {
		return domain.StoryInfo{ID: id, Deleted: true}, nil
	}

	var kids []domain.ItemID
	if len(payload.Kids) > 0 {
		kids = make([]domain.ItemID, 0, len(payload.Kids))
		for _, kid := range payload.Kids {
			kids = append(kids, domain.ItemID(kid))
		}
	}

	return domain.StoryInfo{
		ID:          domain.ItemID(payload.ID),
		By:          payload.By,
		Descendants: payload.Descendants,
		Dead:        payload.Dead,
		Deleted:     payload.Deleted,
		Kids:        kids,
		Score:       payload.Score,
		Time:        payload.Time,
		Title:       payload.Title,
		Type:        payload.Type,
		URL:         payload.URL,
	}, nil
}

// FetchDiscussion returns the text of every comment on the item page, one comment per paragraph block.
func (c *Client) FetchDiscussion(ctx context.Context, id domain.ItemID) (string, error) {
	body, _, err := c.getText(ctx, c.config.WebURL+"/item?id="+id.String())
	if err != nil {
		return "", fmt.Errorf("fetch discussion %s: %w", id, err)
	}

	comments, err := extractComments(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse discussion %s: %w", id, err)
	}

	return strings.Join(comments, "\n\n"), nil
}

// FetchPage downloads the linked article. HTML is converted to markdown; plain text is returned as is.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", fmt.Errorf("fetch page %q: invalid url", pageURL)
	}

	body, contentType, err := c.getText(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("fetch page %s: %w", pageURL, err)
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		markdown, err := c.markdown.ConvertString(body, converter.WithDomain(parsed.Scheme+"://"+parsed.Host))
		if err != nil {
			return "", fmt.Errorf("convert page %s: %w", pageURL, err)
		}
		return strings.TrimSpace(markdown), nil
	case mediaType == "" || strings.HasPrefix(mediaType, "text/"):
		return strings.TrimSpace(body), nil
	default:
		return "", fmt.Errorf("fetch page %s: %w: %s", pageURL, ErrUnsupportedContent, mediaType)
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, target any) error {
	body, _, err := c.get(ctx, endpoint, c.config.MaxPageBytes)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(body), target); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, maxBytes int64) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", &StatusError{URL: endpoint, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return "", "", fmt.Errorf("read body: %w", err)
	}

	return string(data), resp.Header.Get("Content-Type"), nil
}

// getText reads a text resource and returns it as valid UTF-8, decoded from the charset declared in
// the Content-Type header or sniffed from the document.
func (c *Client) getText(ctx context.Context, endpoint string) (string, string, error) {
	body, contentType, err := c.get(ctx, endpoint, c.config.MaxPageBytes)
	if err != nil {
		return "", "", err
	}

	data := []byte(body)
	if int64(len(data)) >= c.config.MaxPageBytes {
		data = trimPartialRune(data)
	}

	reader, err := charset.NewReader(bytes.NewReader(data), contentType)
	if err != nil {
		return "", "", fmt.Errorf("detect charset: %w", err)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", "", fmt.Errorf("decode body: %w", err)
	}

	return strings.ToValidUTF8(string(decoded), string(utf8.RuneError)), contentType, nil
}

// trimPartialRune drops a multi-byte sequence cut off by the body size cap.
func trimPartialRune(data []byte) []byte {
	for i := len(data) - 1; i >= 0 && i >= len(data)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(data[i]) {
			continue
		}
		if !utf8.FullRune(data[i:]) {
			return data[:i]
		}
		return data
	}
	return data
}

type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return "http " + strconv.Itoa(e.StatusCode) + " from " + e.URL
}
