// Package wordpress publishes weekly issues through the WordPress REST API
// using application-password basic auth.
package wordpress

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewsRobot/internal/config"
	"NewsRobot/internal/domain"
	"NewsRobot/internal/ports"
)

// Client talks to a single WordPress site.
type Client struct {
	siteURL    string
	apiBase    string
	authHeader string
	status     string
	categories []string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.Publisher = (*Client)(nil)

// NewClient builds a client from configuration. WordPress shows application
// passwords with grouping spaces; they are stripped before encoding.
func NewClient(cfg config.WordPressConfig, log *slog.Logger) *Client {
	password := strings.ReplaceAll(cfg.AppPassword, " ", "")
	credentials := cfg.Username + ":" + password

	apiBase := cfg.APIEndpoint
	if apiBase == "" {
		apiBase = "/wp-json/wp/v2"
	}

	status := cfg.Status
	if status == "" {
		status = "private"
	}

	return &Client{
		siteURL:    strings.TrimSuffix(cfg.SiteURL, "/"),
		apiBase:    apiBase,
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials)),
		status:     status,
		categories: cfg.Categories,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log,
	}
}

type postResponse struct {
	ID   int    `json:"id"`
	Link string `json:"link"`
}

type categoryResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Publish creates a post for the newsletter and returns its reference.
// Category resolution is best effort: a category that cannot be found or
// created is dropped so a taxonomy hiccup never blocks the weekly post.
func (c *Client) Publish(ctx context.Context, n domain.Newsletter) (domain.PostRef, error) {
	if c.siteURL == "" {
		return domain.PostRef{}, fmt.Errorf("wordpress client misconfigured: missing site url")
	}

	names := n.Categories
	if len(names) == 0 {
		names = c.categories
	}
	categoryIDs := c.resolveCategories(ctx, names)

	payload := map[string]any{
		"title":      n.Title,
		"content":    n.HTML,
		"status":     c.status,
		"categories": categoryIDs,
	}
	if n.Excerpt != "" {
		payload["excerpt"] = n.Excerpt
	}

	var post postResponse
	if err := c.post(ctx, "/posts", payload, &post); err != nil {
		return domain.PostRef{}, fmt.Errorf("create post: %w", err)
	}

	return domain.PostRef{
		ID:      post.ID,
		URL:     post.Link,
		EditURL: fmt.Sprintf("%s/wp-admin/post.php?post=%d&action=edit", c.siteURL, post.ID),
	}, nil
}

// resolveCategories maps category names to IDs, creating missing ones.
func (c *Client) resolveCategories(ctx context.Context, names []string) []int {
	ids := make([]int, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}

		if id, ok := c.findCategory(ctx, name); ok {
			ids = append(ids, id)
			continue
		}

		var created categoryResponse
		if err := c.post(ctx, "/categories", map[string]any{"name": name}, &created); err != nil {
			c.warn("create category failed", "category", name, "error", err)
			continue
		}
		c.debug("created category", "category", name, "id", created.ID)
		ids = append(ids, created.ID)
	}
	return ids
}

func (c *Client) findCategory(ctx context.Context, name string) (int, bool) {
	endpoint := fmt.Sprintf("%s%s/categories?%s", c.siteURL, c.apiBase, url.Values{
		"search":   {name},
		"per_page": {"1"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, false
	}
	req.Header.Set("Authorization", c.authHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.warn("search category failed", "category", name, "error", err)
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, false
	}

	var categories []categoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&categories); err != nil {
		return 0, false
	}
	if len(categories) == 0 || !strings.EqualFold(categories[0].Name, name) {
		return 0, false
	}
	return categories[0].ID, true
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.siteURL+c.apiBase+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "NewsRobot/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("wordpress error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
