package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"NewsRobot/internal/config"
	"NewsRobot/internal/domain"
	"NewsRobot/internal/selector"
	"NewsRobot/internal/usecase"
)

type staticBookmarks struct{}

func (staticBookmarks) Load(ctx context.Context) ([]domain.Bookmark, int, error) {
	return []domain.Bookmark{{URL: "https://b.example/1"}}, 1, nil
}

func testConfig() config.Config {
	return config.Config{
		Sources: []config.SourceConfig{{Name: "feed", URL: "https://example.org/rss"}},
		Topics:  []config.TopicConfig{{Name: "AI/ML", Priority: 10, Keywords: []string{"llm"}}},
		ChatGPT: config.ChatGPTConfig{Model: "gpt-4o-mini"},
	}
}

func TestHealthAndRoot(t *testing.T) {
	t.Parallel()

	server := NewServer(testConfig(), nil, nil, nil, nil)
	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("root request: %v", err)
	}
	defer resp.Body.Close()

	var root map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&root); err != nil {
		t.Fatalf("decode root: %v", err)
	}
	if root["service"] != "NewsRobot" {
		t.Fatalf("unexpected root payload: %v", root)
	}
}

func TestConfigStatus(t *testing.T) {
	t.Parallel()

	server := NewServer(testConfig(), nil, staticBookmarks{}, nil, nil)
	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/config/status")
	if err != nil {
		t.Fatalf("status request: %v", err)
	}
	defer resp.Body.Close()

	var status struct {
		Sources   int `json:"sources"`
		Topics    int `json:"topics"`
		Bookmarks struct {
			Count   int `json:"count"`
			Skipped int `json:"skipped"`
		} `json:"bookmarks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Sources != 1 || status.Topics != 1 {
		t.Fatalf("unexpected counts: %+v", status)
	}
	if status.Bookmarks.Count != 1 || status.Bookmarks.Skipped != 1 {
		t.Fatalf("unexpected bookmark stats: %+v", status)
	}
}

func TestRunWithoutPipeline(t *testing.T) {
	t.Parallel()

	server := NewServer(testConfig(), nil, nil, nil, nil)
	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/run", "application/json", nil)
	if err != nil {
		t.Fatalf("run request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestRunExecutesPipeline(t *testing.T) {
	t.Parallel()

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{Selector: selector.New()})
	server := NewServer(testConfig(), pipeline, nil, nil, nil)
	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/run", "application/json", nil)
	if err != nil {
		t.Fatalf("run request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		Status string            `json:"status"`
		Report usecase.RunReport `json:"report"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode run response: %v", err)
	}
	if payload.Status != "success" || payload.Report.Selected != 0 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}
