// file: internal/metadata/text.go
// version: 1.1.0
// guid: 6e2b9d4a-3c7f-41e8-a5b0-8d1f6c2e9a37

package metadata

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/width"
)

// NormalizeQuery prepares a title for the search endpoint: surrounding space
// is trimmed and full-width ASCII letters and digits are narrowed. CJK
// punctuation and every other character is sent as given.
func NormalizeQuery(title string) string {
	return strings.Map(narrowAlnum, strings.TrimSpace(title))
}

func narrowAlnum(r rune) rune {
	switch {
	case r >= '０' && r <= '９', r >= 'Ａ' && r <= 'Ｚ', r >= 'ａ' && r <= 'ｚ':
		p := width.LookupRune(r)
		return p.Narrow()
	}
	return r
}

// PlainText renders an HTML comment block as plain text. Block-level tags and
// <br> become line breaks; runs of blank lines collapse to one.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.TrimSpace(fragment)
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return strings.TrimSpace(fragment)
			}
			return collapseBlankLines(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "br", "p", "div", "li", "h1", "h2", "h3", "h4":
				b.WriteByte('\n')
			}
		}
	}
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
