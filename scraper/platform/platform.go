// Package platform defines the pluggable per-site extraction plan: build a
// search URL for a role, enumerate paginated listing links, extract one
// normalized record from a listing page.
package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/alwedo/jobscout/record"
	"github.com/alwedo/jobscout/scraper/browser"
)

// Params carries the scrape job context into a strategy call.
type Params struct {
	Role        string
	Tags        []string // technology allow-list; empty means the default dictionary
	Pages       int
	SettleDelay time.Duration // heuristic wait after each navigation
}

// Platform is a named extraction strategy. Implementations are pure
// mappings from a live page handle plus a target URL to structured data and
// own no state across calls.
type Platform interface {
	Name() string

	// URL builds the search URL for a role.
	URL(role string) string

	// JobLinks enumerates listing links for the search URL, paginating up
	// to params.Pages times.
	JobLinks(ctx context.Context, page browser.Page, url string, params Params) ([]string, error)

	// JobInfo extracts one normalized record from a listing page.
	JobInfo(ctx context.Context, page browser.Page, url string, params Params) (record.JobRecord, error)
}

// Settle waits the configured delay between page loads, or returns early
// when the context is done.
func Settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Document parses the page's rendered content for selector-based
// extraction.
func Document(page browser.Page) (*goquery.Document, error) {
	html, err := page.Content()
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("unable to parse page content in Document: %w", err)
	}
	return doc, nil
}

// FirstText returns the trimmed text of the first element matching the
// selector, failing when the selector matches nothing.
func FirstText(doc *goquery.Document, selector string) (string, error) {
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return "", fmt.Errorf("element for selector %q not found", selector)
	}
	return strings.TrimSpace(sel.First().Text()), nil
}

// AllText returns the trimmed text of every element matching the selector,
// failing when the selector matches nothing.
func AllText(doc *goquery.Document, selector string) ([]string, error) {
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("elements for selector %q not found", selector)
	}
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out, nil
}

// ListItems returns the trimmed text of each li under the first element
// matching the selector.
func ListItems(doc *goquery.Document, selector string) ([]string, error) {
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("list for selector %q not found", selector)
	}
	var out []string
	sel.First().Find("li").Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	if len(out) == 0 {
		return nil, fmt.Errorf("list for selector %q has no items", selector)
	}
	return out, nil
}
