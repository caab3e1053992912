package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

const (
	researchTimeout    = 20 * time.Second
	scrapeMaxBodySize  = 2 * 1024 * 1024
	scrapeMaxChars     = 4000
	defaultSearchLimit = 5
	researchUserAgent  = "mock-interviewer/1.0"
)

// SerperSearchTool queries the Serper Google search API.
type SerperSearchTool struct {
	APIKey   string
	Endpoint string
	Limit    int
	client   *http.Client
}

func NewSerperSearchTool(apiKey, endpoint string) *SerperSearchTool {
	if endpoint == "" {
		endpoint = "https://google.serper.dev/search"
	}
	return &SerperSearchTool{
		APIKey:   apiKey,
		Endpoint: endpoint,
		Limit:    defaultSearchLimit,
		client:   &http.Client{Timeout: researchTimeout},
	}
}

func (t *SerperSearchTool) Name() string { return "web_search" }

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

func (t *SerperSearchTool) Research(ctx context.Context, query string, _ []ResearchNote) ([]ResearchNote, error) {
	body, err := json.Marshal(map[string]any{"q": query, "num": t.Limit})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("X-API-KEY", t.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("search returned HTTP %d", resp.StatusCode)
	}

	var parsed serperResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, scrapeMaxBodySize)).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	var notes []ResearchNote
	for _, item := range parsed.Organic {
		if len(notes) >= t.Limit {
			break
		}
		notes = append(notes, ResearchNote{
			Source: t.Name(),
			Title:  item.Title,
			URL:    item.Link,
			Text:   item.Snippet,
		})
	}

	return notes, nil
}

// PageScrapeTool fetches the first URL found in prior notes and converts the
// page to markdown.
type PageScrapeTool struct {
	MaxChars int
	client   *http.Client
}

func NewPageScrapeTool() *PageScrapeTool {
	return &PageScrapeTool{
		MaxChars: scrapeMaxChars,
		client:   &http.Client{Timeout: researchTimeout},
	}
}

func (t *PageScrapeTool) Name() string { return "web_scrape" }

func (t *PageScrapeTool) Research(ctx context.Context, _ string, prior []ResearchNote) ([]ResearchNote, error) {
	target := ""
	for _, note := range prior {
		if note.URL != "" {
			target = note.URL
			break
		}
	}
	if target == "" {
		return nil, nil
	}

	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("unsupported url: %s", target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", researchUserAgent)
	req.Header.Set("Accept", "text/html,text/plain,application/xhtml+xml")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch returned HTTP %d for %s", resp.StatusCode, target)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, scrapeMaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}

	content := string(body)
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/html") || strings.Contains(contentType, "application/xhtml") {
		md, err := htmltomarkdown.ConvertString(content)
		if err != nil {
			return nil, fmt.Errorf("failed to convert page: %w", err)
		}
		content = md
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	return []ResearchNote{{
		Source: t.Name(),
		URL:    target,
		Text:   truncateRunes(content, t.MaxChars),
	}}, nil
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
