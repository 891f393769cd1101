package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NewsRobot/internal/config"
	"NewsRobot/internal/domain"
	"NewsRobot/internal/newsletter"
	"NewsRobot/internal/ports"
)

// ChatGPTWriter produces the weekly issue body through an OpenAI-compatible
// chat completions API. The ranked shortlist is sent as JSON; the model is
// instructed by the configured system prompt to return post-ready HTML.
type ChatGPTWriter struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	titlePrefix  string
	httpClient   *http.Client
}

var _ ports.NewsletterWriter = (*ChatGPTWriter)(nil)

// NewChatGPTWriter builds a writer from configuration.
func NewChatGPTWriter(cfg config.ChatGPTConfig, titlePrefix string) *ChatGPTWriter {
	return &ChatGPTWriter{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		titlePrefix:  titlePrefix,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// WriteNewsletter sends the shortlist to the model and wraps the returned
// HTML into a publishable issue. Title and excerpt stay deterministic; only
// the body prose is delegated to the model.
func (c *ChatGPTWriter) WriteNewsletter(ctx context.Context, issueDate time.Time, items []domain.RankedArticle) (domain.Newsletter, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return domain.Newsletter{}, fmt.Errorf("chatgpt writer misconfigured")
	}
	if len(items) == 0 {
		return domain.Newsletter{}, fmt.Errorf("no articles to write about")
	}

	payload, err := shortlistJSON(issueDate, items)
	if err != nil {
		return domain.Newsletter{}, fmt.Errorf("marshal shortlist: %w", err)
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": safePrompt(c.systemPrompt)},
			{"role": "user", "content": string(payload)},
		},
	})
	if err != nil {
		return domain.Newsletter{}, fmt.Errorf("marshal chatgpt payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Newsletter{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Newsletter{}, fmt.Errorf("call chatgpt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Newsletter{}, fmt.Errorf("chatgpt error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.Newsletter{}, fmt.Errorf("decode chatgpt response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return domain.Newsletter{}, fmt.Errorf("chatgpt returned no choices")
	}

	html := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if html == "" {
		return domain.Newsletter{}, fmt.Errorf("chatgpt returned empty content")
	}

	return domain.Newsletter{
		Title:   newsletter.IssueTitle(c.titlePrefix, issueDate),
		HTML:    html,
		Excerpt: newsletter.Excerpt(items),
	}, nil
}

func shortlistJSON(issueDate time.Time, items []domain.RankedArticle) ([]byte, error) {
	type item struct {
		URL          string `json:"url"`
		Title        string `json:"title"`
		Excerpt      string `json:"excerpt"`
		Source       string `json:"source"`
		Category     string `json:"category"`
		Published    string `json:"published_date,omitempty"`
		IsBookmark   bool   `json:"is_bookmark"`
		Priority     int    `json:"priority"`
		MatchedTopic string `json:"matched_topic"`
	}

	payload := struct {
		IssueDate string `json:"issue_date"`
		Articles  []item `json:"articles"`
	}{
		IssueDate: newsletter.FormatIssueDate(issueDate),
	}
	for _, ranked := range items {
		entry := item{
			URL:          ranked.ID,
			Title:        ranked.Title,
			Excerpt:      ranked.Excerpt,
			Source:       ranked.Source,
			Category:     ranked.Category,
			IsBookmark:   ranked.IsBookmark,
			Priority:     ranked.Priority,
			MatchedTopic: ranked.MatchedTopic,
		}
		if !ranked.PublishedAt.IsZero() {
			entry.Published = ranked.PublishedAt.Format(time.RFC3339)
		}
		payload.Articles = append(payload.Articles, entry)
	}

	return json.Marshal(payload)
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You write a weekly newsletter from a ranked article shortlist. Return only the post HTML body."
	}
	return prompt
}
