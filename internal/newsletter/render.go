// Package newsletter renders the weekly issue. The TemplateWriter is the
// deterministic fallback used when no LLM API key is configured; it produces
// the same overall document shape the ChatGPT writer is instructed to return
// (intro paragraph followed by an ordered list of articles).
package newsletter

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"NewsRobot/internal/domain"
	"NewsRobot/internal/ports"
)

// WordPress renders the post title itself, so the template starts at the
// identifying <h2> rather than an <h1>.
const issueTemplate = `<h2>From NewsRobot:</h2>
<p>{{.Intro}}</p>
<ol>
{{- range .Items}}
<li><strong>{{.Title}}</strong>{{if .Excerpt}} &mdash; {{.Excerpt}}{{end}} (<a href="{{.URL}}">{{.SourceLabel}}</a>)</li>
{{- end}}
</ol>`

var issueTmpl = template.Must(template.New("issue").Parse(issueTemplate))

// TemplateWriter implements ports.NewsletterWriter without any external
// service call.
type TemplateWriter struct {
	TitlePrefix string
}

var _ ports.NewsletterWriter = (*TemplateWriter)(nil)

type issueItem struct {
	Title       string
	Excerpt     string
	URL         string
	SourceLabel string
}

// WriteNewsletter assembles the issue from the ranked shortlist.
func (w *TemplateWriter) WriteNewsletter(ctx context.Context, issueDate time.Time, items []domain.RankedArticle) (domain.Newsletter, error) {
	if len(items) == 0 {
		return domain.Newsletter{}, fmt.Errorf("no articles to render")
	}

	data := struct {
		Intro string
		Items []issueItem
	}{
		Intro: intro(issueDate, items),
	}
	for _, item := range items {
		data.Items = append(data.Items, issueItem{
			Title:       item.Title,
			Excerpt:     excerptSnippet(item.Excerpt),
			URL:         item.ID,
			SourceLabel: sourceLabel(item),
		})
	}

	var buf bytes.Buffer
	if err := issueTmpl.Execute(&buf, data); err != nil {
		return domain.Newsletter{}, fmt.Errorf("render issue: %w", err)
	}

	return domain.Newsletter{
		Title:   IssueTitle(w.TitlePrefix, issueDate),
		HTML:    buf.String(),
		Excerpt: Excerpt(items),
	}, nil
}

// Excerpt builds the short post summary shown in listings.
func Excerpt(items []domain.RankedArticle) string {
	titles := make([]string, 0, 3)
	for _, item := range items {
		if len(titles) == 3 {
			break
		}
		titles = append(titles, item.Title)
	}
	suffix := ""
	if len(items) > len(titles) {
		suffix = ", and more"
	}
	return fmt.Sprintf("This week's %d picks: %s%s.", len(items), strings.Join(titles, "; "), suffix)
}

func intro(issueDate time.Time, items []domain.RankedArticle) string {
	bookmarks := 0
	for _, item := range items {
		if item.IsBookmark {
			bookmarks++
		}
	}
	s := fmt.Sprintf("The curated reading list for the week of %s: %d articles selected from the configured feeds",
		FormatIssueDate(issueDate), len(items))
	if bookmarks > 0 {
		s += fmt.Sprintf(", including %d reader bookmarks", bookmarks)
	}
	return s + "."
}

// excerptSnippet trims feed excerpts to a list-friendly length. Feed
// descriptions may contain markup; the template escapes whatever remains.
func excerptSnippet(excerpt string) string {
	excerpt = strings.Join(strings.Fields(excerpt), " ")
	const limit = 240
	if len(excerpt) <= limit {
		return excerpt
	}
	cut := strings.LastIndex(excerpt[:limit], " ")
	if cut <= 0 {
		cut = limit
	}
	return excerpt[:cut] + "…"
}

func sourceLabel(item domain.RankedArticle) string {
	if item.Source != "" {
		return item.Source
	}
	return "source"
}
