// Package sanitize normalizes mail text before it is handed to Pushover.
package sanitize

import (
	"bytes"
	"html"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
)

var (
	strict = bluemonday.StrictPolicy()
	markup = markupPolicy()
)

// markupPolicy allows the formatting Pushover renders in HTML messages.
func markupPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "i", "em", "u", "br", "p")
	p.AllowAttrs("color").Matching(regexp.MustCompile(`^#?[0-9A-Za-z]+$`)).OnElements("font")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireParseableURLs(true)
	return p
}

// Text reduces s to a single line of plain text: tags are dropped (along with
// script and style content), entities decoded, control characters removed and
// whitespace collapsed.
func Text(s string) string {
	// decoding entities can surface new tags, so run until nothing changes
	out := s
	for i := 0; i <= len(s); i++ {
		next := textPass(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func textPass(s string) string {
	s = html.UnescapeString(strict.Sanitize(s))
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Markup strips unsafe elements and attributes from s, keeping bold, italic,
// underline, paragraphs, line breaks, font colors and links.
func Markup(s string) string {
	return unescapeQuotes(markup.Sanitize(s))
}

// quotes undoes the escaping of quotes in text. Pushover shows messages sent
// without html=1 verbatim, so "&#39;" would reach the device as is.
var quotes = strings.NewReplacer("&#39;", "'", "&#34;", `"`)

// unescapeQuotes decodes quote entities in text nodes of s. Tags are copied
// untouched so quoted attribute values stay intact.
func unescapeQuotes(s string) string {
	if !strings.Contains(s, "&#") {
		return s
	}
	var out bytes.Buffer
	z := xhtml.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			if z.Err() != io.EOF {
				return s
			}
			return out.String()
		}
		raw := string(z.Raw())
		if tt == xhtml.TextToken {
			raw = quotes.Replace(raw)
		}
		out.WriteString(raw)
	}
}
