// Package selector implements the article selection and ranking stage of the
// weekly pipeline. Given discovered articles, user bookmarks, and the topic
// priority table it produces the ordered shortlist that feeds the newsletter
// writer. Selection is a pure function of its inputs: no I/O, no clock reads.
package selector

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"NewsRobot/internal/domain"
)

const (
	// DefaultMaxTotal is the shortlist target size. Bookmarks are always
	// included and may push the shortlist past this value.
	DefaultMaxTotal = 20

	// DefaultMaxPerTopic caps how many non-bookmark articles a single
	// matched topic may contribute.
	DefaultMaxPerTopic = 10

	// BookmarkPriority outranks every configured topic priority.
	BookmarkPriority = 11

	minTopicPriority = 7
	maxTopicPriority = 10

	// TopicBookmark is the synthetic topic assigned to bookmark entries.
	TopicBookmark = "bookmark"
	// TopicNone marks articles that matched no configured topic.
	TopicNone = "none"
)

// Stats reports recoverable anomalies observed during a selection run.
// None of them are errors; they exist so the caller can log them.
type Stats struct {
	InvalidBookmarks int // bookmarks dropped for missing URL
	InvalidTopics    int // topic rules dropped for non-positive priority or empty name
	Unmatched        int // discovered articles that matched no topic
	SeenSkipped      int // discovered articles excluded by the seen set
	Duplicates       int // discovered articles dropped as repeated identifiers
}

// Selector holds the selection bounds and the keyword matching mode.
// The zero value is unusable; construct with New.
type Selector struct {
	MaxTotal    int
	MaxPerTopic int

	// WordBoundary switches keyword matching from raw substring search to
	// word-boundary-aware search. Substring matching is the historical
	// behavior and the default; it is prone to false positives (the keyword
	// "AI" matches inside "fails").
	WordBoundary bool
}

// New returns a Selector with the default caps and substring matching.
func New() Selector {
	return Selector{MaxTotal: DefaultMaxTotal, MaxPerTopic: DefaultMaxPerTopic}
}

type candidate struct {
	domain.RankedArticle
	order int // discovery order, final tie break
}

// Select ranks discovered articles and bookmarks against the topic rules and
// returns the shortlist in final output order. seen holds normalized
// identifiers published in previous runs; matching non-bookmark articles are
// excluded before ranking. Bookmarks bypass the seen set so a resubmitted
// bookmark always surfaces again.
//
// The result is deterministic for identical inputs and obeys:
//   - at most MaxTotal items, except bookmarks which are always included,
//   - at most MaxPerTopic non-bookmark items per matched topic,
//   - priority descending, then published time descending, then input order,
//   - each identifier at most once,
//   - bookmark entries carry priority 11 and topic "bookmark".
func (s Selector) Select(articles []domain.Article, bookmarks []domain.Bookmark, topics []domain.TopicRule, seen map[string]bool) ([]domain.RankedArticle, Stats) {
	maxTotal := s.MaxTotal
	if maxTotal <= 0 {
		maxTotal = DefaultMaxTotal
	}
	maxPerTopic := s.MaxPerTopic
	if maxPerTopic <= 0 {
		maxPerTopic = DefaultMaxPerTopic
	}

	var stats Stats
	rules := validRules(topics, &stats)

	var candidates []candidate
	index := map[string]int{}

	for _, art := range articles {
		id := domain.NormalizeID(art.ID)
		if id == "" {
			continue
		}
		if seen[id] {
			stats.SeenSkipped++
			continue
		}
		if _, dup := index[id]; dup {
			stats.Duplicates++
			continue
		}

		topic, priority := s.matchTopic(art, rules)
		if priority == 0 {
			// Unmatched articles never qualify for the shortlist.
			stats.Unmatched++
			continue
		}

		index[id] = len(candidates)
		candidates = append(candidates, candidate{
			RankedArticle: domain.RankedArticle{Article: art, MatchedTopic: topic, Priority: priority},
			order:         len(candidates),
		})
	}

	for _, bm := range bookmarks {
		id := domain.NormalizeID(bm.URL)
		if id == "" {
			stats.InvalidBookmarks++
			continue
		}
		if i, ok := index[id]; ok {
			// A bookmark that duplicates a discovered article collapses to
			// one entry: the richer feed metadata stays, the bookmark score
			// and flag win.
			candidates[i].Priority = BookmarkPriority
			candidates[i].MatchedTopic = TopicBookmark
			candidates[i].IsBookmark = true
			continue
		}
		index[id] = len(candidates)
		candidates = append(candidates, candidate{
			RankedArticle: domain.RankedArticle{
				Article:      bookmarkArticle(bm),
				MatchedTopic: TopicBookmark,
				Priority:     BookmarkPriority,
			},
			order: len(candidates),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		if !candidates[i].PublishedAt.Equal(candidates[j].PublishedAt) {
			return candidates[i].PublishedAt.After(candidates[j].PublishedAt)
		}
		return candidates[i].order < candidates[j].order
	})

	perTopic := map[string]int{}
	out := make([]domain.RankedArticle, 0, maxTotal)
	for _, c := range candidates {
		if c.IsBookmark {
			out = append(out, c.RankedArticle)
			continue
		}
		if len(out) >= maxTotal {
			continue
		}
		if perTopic[c.MatchedTopic] >= maxPerTopic {
			continue
		}
		perTopic[c.MatchedTopic]++
		out = append(out, c.RankedArticle)
	}

	return out, stats
}

func bookmarkArticle(bm domain.Bookmark) domain.Article {
	title := strings.TrimSpace(bm.Note)
	if title == "" {
		title = "User Bookmark"
	}
	return domain.Article{
		ID:          bm.URL,
		Title:       title,
		Excerpt:     bm.Note,
		Source:      "User Bookmark",
		Category:    "bookmark",
		PublishedAt: bm.SubmittedAt,
		IsBookmark:  true,
	}
}

// validRules filters malformed topic rules and clamps priorities into the
// configured 7-10 band, keeping the whole output range within [7, 11] with
// 11 reserved for bookmarks. Configuration order is preserved.
func validRules(topics []domain.TopicRule, stats *Stats) []domain.TopicRule {
	rules := make([]domain.TopicRule, 0, len(topics))
	for _, rule := range topics {
		if rule.Name == "" || rule.Priority <= 0 {
			stats.InvalidTopics++
			continue
		}
		if rule.Priority < minTopicPriority {
			rule.Priority = minTopicPriority
		}
		if rule.Priority > maxTopicPriority {
			rule.Priority = maxTopicPriority
		}
		rules = append(rules, rule)
	}
	return rules
}

// matchTopic returns the best matching rule for the article. The highest
// configured priority wins; ties go to the rule listed first. Articles with
// no match report TopicNone and priority 0.
func (s Selector) matchTopic(art domain.Article, rules []domain.TopicRule) (string, int) {
	text := strings.ToLower(art.Title + " " + art.Excerpt)

	best := -1
	for i, rule := range rules {
		if !s.matchesKeywords(text, rule.Keywords) {
			continue
		}
		if best < 0 || rule.Priority > rules[best].Priority {
			best = i
		}
	}

	if best < 0 {
		return TopicNone, 0
	}
	return rules[best].Name, rules[best].Priority
}

func (s Selector) matchesKeywords(text string, keywords []string) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if s.WordBoundary {
			if containsWord(text, kw) {
				return true
			}
		} else if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// containsWord reports whether kw occurs in text with non-word characters
// (or the string edges) on both sides.
func containsWord(text, kw string) bool {
	for start := 0; start <= len(text)-len(kw); {
		i := strings.Index(text[start:], kw)
		if i < 0 {
			return false
		}
		i += start

		boundedLeft := i == 0
		if !boundedLeft {
			r, _ := utf8.DecodeLastRuneInString(text[:i])
			boundedLeft = !isWordRune(r)
		}

		end := i + len(kw)
		boundedRight := end == len(text)
		if !boundedRight {
			r, _ := utf8.DecodeRuneInString(text[end:])
			boundedRight = !isWordRune(r)
		}

		if boundedLeft && boundedRight {
			return true
		}
		start = i + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
