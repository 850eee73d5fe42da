// Package extract pulls headlines and content fragments out of rendered HTML.
// All functions are selector-driven; nothing here assumes a particular site
// structure.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrInvalidItem indicates a listing item without a usable title link. The
// listing step is strict: one malformed item fails the whole extraction.
var ErrInvalidItem = errors.New("invalid news item structure")

// Headline is one (title, link) pair found on a listing page. Href may be
// relative; callers resolve it against the listing page's own URL.
type Headline struct {
	Title string
	Href  string
}

// Listing extracts headlines from a listing page in document order. Each
// element matched by itemSelector must contain a linkSelector element with a
// non-empty href and non-empty visible text, otherwise the whole extraction
// fails with ErrInvalidItem.
func Listing(html, itemSelector, linkSelector string) ([]Headline, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	var (
		headlines []Headline
		itemErr   error
	)
	doc.Find(itemSelector).EachWithBreak(func(i int, item *goquery.Selection) bool {
		link := item.Find(linkSelector).First()
		href, hasHref := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		if link.Length() == 0 || !hasHref || strings.TrimSpace(href) == "" || title == "" {
			itemErr = fmt.Errorf("listing item %d (%s): %w", i, itemSelector, ErrInvalidItem)
			return false
		}
		headlines = append(headlines, Headline{Title: title, Href: strings.TrimSpace(href)})
		return true
	})
	if itemErr != nil {
		return nil, itemErr
	}
	return headlines, nil
}

// Fragments returns the outer HTML of every element matched by selector, in
// document order. A selector matching nothing yields an empty slice, not an
// error.
func Fragments(html, selector string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	var (
		fragments []string
		serErr    error
	)
	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		markup, err := goquery.OuterHtml(sel)
		if err != nil {
			serErr = fmt.Errorf("serialize fragment: %w", err)
			return false
		}
		fragments = append(fragments, markup)
		return true
	})
	if serErr != nil {
		return nil, serErr
	}
	return fragments, nil
}

// JoinFragments renders an article body as fragments separated by newlines.
func JoinFragments(fragments []string) string {
	return strings.Join(fragments, "\n")
}
