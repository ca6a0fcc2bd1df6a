// Package extract pulls text and attributes out of fetched HTML.
package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/raysh454/cfscrape/internal/webclient"
)

// challengeMarkers are selectors present on common anti-bot interstitials.
var challengeMarkers = []string{
	"#challenge-form",
	"#challenge-running",
	"#cf-challenge-running",
	"script[src*='/cdn-cgi/challenge-platform/']",
	"[data-cf-challenge]",
}

func parseHTMLDocument(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// Select returns the trimmed text of every element matching selector, in
// document order. Elements with no text are skipped.
func Select(body []byte, selector string) ([]string, error) {
	if strings.TrimSpace(selector) == "" {
		return nil, fmt.Errorf("extract: empty selector")
	}
	doc, err := parseHTMLDocument(body)
	if err != nil {
		return nil, fmt.Errorf("extract: parse html: %w", err)
	}

	var out []string
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out, nil
}

// Attr returns the value of attr on every element matching selector that has it.
func Attr(body []byte, selector, attr string) ([]string, error) {
	doc, err := parseHTMLDocument(body)
	if err != nil {
		return nil, fmt.Errorf("extract: parse html: %w", err)
	}

	var out []string
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		if v := getAttr(sel, attr); v != "" {
			out = append(out, v)
		}
	})
	return out, nil
}

// Title returns the document title, or "" if there is none.
func Title(body []byte) string {
	doc, err := parseHTMLDocument(body)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// IsChallengePage reports whether body looks like an anti-bot interstitial
// rather than the page that was asked for.
func IsChallengePage(body []byte) bool {
	doc, err := parseHTMLDocument(body)
	if err != nil {
		return false
	}
	if webclient.IsChallengeTitle(strings.TrimSpace(doc.Find("title").First().Text())) {
		return true
	}
	for _, m := range challengeMarkers {
		if doc.Find(m).Length() > 0 {
			return true
		}
	}
	return false
}

// getAttr safely retrieves an attribute value from a goquery selection.
func getAttr(sel *goquery.Selection, attrName string) string {
	val, exists := sel.Attr(attrName)
	if exists {
		return strings.TrimSpace(val)
	}
	return ""
}
