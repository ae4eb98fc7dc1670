// Package search ranks documents against free-text queries.
//
// Matching is substring based over whole documents: there is no tokenizer
// and no inverted index. Every document is scored with a fixed set of
// additive signals and the non-zero scores are returned in descending order.
package search

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/docsearch"
)

// Signal weights.
const (
	ScoreExactTitle    = 100
	ScoreTitleContains = 50
	ScorePageName      = 30
	ScoreURL           = 20
	ScorePerOccurrence = 2
	ScoreShortTitle    = 5

	// MaxContentScore caps the content signal so that a content-only match
	// can never outrank a title match.
	MaxContentScore = 10

	// FuzzyScale multiplies the fuzzy similarity before flooring.
	FuzzyScale = 10
	// FuzzyThreshold is the similarity a fuzzy match must exceed.
	FuzzyThreshold = 0.7
	// ShortTitleLength is the title length below which matches get a boost.
	ShortTitleLength = 50
)

// SnippetLength is the number of characters of context around a match.
const SnippetLength = 150

// Ellipsis marks a snippet that was clamped.
const Ellipsis = "..."

// Engine scores and ranks documents. The zero value is ready to use.
type Engine struct{}

// NewEngine creates a new Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Search returns the documents with a positive score for query, ordered by
// descending score. Ties keep the order of docs.
func (e *Engine) Search(docs []*docsearch.Document, query string, opts docsearch.SearchOptions) []*docsearch.SearchResult {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return nil
	}

	var results []*docsearch.SearchResult
	for _, doc := range docs {
		score, matchType := Score(doc, term, opts.Fuzzy)
		if score <= 0 {
			continue
		}
		results = append(results, &docsearch.SearchResult{
			Document:  doc,
			Score:     score,
			MatchType: matchType,
			Snippet:   ExtractSnippet(doc.Content, term),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results
}

// Score computes the relevance of doc for a lower-cased, trimmed term.
// The match type is the first signal that matched.
func Score(doc *docsearch.Document, term string, fuzzy bool) (int, docsearch.MatchType) {
	title := strings.ToLower(doc.Title)
	pageName := strings.ToLower(doc.PageName)

	var score int
	var matchType docsearch.MatchType
	setType := func(t docsearch.MatchType) {
		if matchType == "" {
			matchType = t
		}
	}

	if title == term {
		score += ScoreExactTitle
		setType(docsearch.MatchExactTitle)
	} else if strings.Contains(title, term) {
		score += ScoreTitleContains
		setType(docsearch.MatchTitleContains)
	}

	if strings.Contains(pageName, term) {
		score += ScorePageName
		setType(docsearch.MatchPageName)
	}

	if strings.Contains(strings.ToLower(doc.URL), term) {
		score += ScoreURL
		setType(docsearch.MatchURL)
	}

	if n := strings.Count(strings.ToLower(doc.Content), term); n > 0 {
		score += min(ScorePerOccurrence*n, MaxContentScore)
		setType(docsearch.MatchContent)
	}

	if fuzzy && score == 0 {
		s := Similarity(term, title) + Similarity(term, pageName)
		if s > FuzzyThreshold {
			score += int(math.Floor(FuzzyScale * s))
			setType(docsearch.MatchFuzzy)
		}
	}

	if score > 0 && utf8.RuneCountInString(title) < ShortTitleLength {
		score += ScoreShortTitle
	}

	return score, matchType
}

// Similarity returns 1 when text contains pattern. Otherwise it scans text
// left to right, greedily matching pattern characters in order, and returns
// the fraction of pattern characters matched.
func Similarity(pattern, text string) float64 {
	if pattern == "" {
		return 0
	}
	if strings.Contains(text, pattern) {
		return 1
	}

	p := []rune(pattern)
	matched := 0
	for _, r := range text {
		if matched == len(p) {
			break
		}
		if r == p[matched] {
			matched++
		}
	}
	return float64(matched) / float64(len(p))
}

// ExtractSnippet returns a window of content centered on the first
// case-insensitive occurrence of term. The zero Snippet is returned when
// term does not occur.
func ExtractSnippet(content, term string) docsearch.Snippet {
	if term == "" {
		return docsearch.Snippet{}
	}
	lower := strings.ToLower(content)
	term = strings.ToLower(term)
	at := strings.Index(lower, term)
	if at < 0 {
		return docsearch.Snippet{}
	}

	runes := []rune(lower)
	start := utf8.RuneCountInString(lower[:at])
	length := utf8.RuneCountInString(term)

	from := max(0, start-SnippetLength/2)
	to := min(len(runes), start+length+SnippetLength/2)

	var b strings.Builder
	highlight := start - from
	if from > 0 {
		b.WriteString(Ellipsis)
		highlight += utf8.RuneCountInString(Ellipsis)
	}
	b.WriteString(string(runes[from:to]))
	if to < len(runes) {
		b.WriteString(Ellipsis)
	}

	return docsearch.Snippet{
		Text:            b.String(),
		HighlightStart:  highlight,
		HighlightLength: length,
	}
}
