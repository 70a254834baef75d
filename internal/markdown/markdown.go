// Package markdown converts the assistant's lightweight markup into a
// restricted HTML subset. The contract is defensive: HasMarkup gates whether
// a message is routed through HTML construction at all, and ToSafeHTML never
// fails — any internal problem falls back to the untouched input text.
package markdown

import "regexp"

var markupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^#{1,3}\s+`),      // headings
	regexp.MustCompile(`\*\*.*?\*\*`),         // bold
	regexp.MustCompile(`\*.*?\*`),             // italic
	regexp.MustCompile("`.*?`"),               // inline code
	regexp.MustCompile("(?s)```.*?```"),       // fenced code
	regexp.MustCompile(`(?m)^[-*]\s+`),        // bullet lines
	regexp.MustCompile(`(?m)^>\s+`),           // blockquotes
}

// HasMarkup reports whether text contains any of the recognized lightweight
// markup forms. Plain text must never be routed through ToSafeHTML.
func HasMarkup(text string) bool {
	if text == "" {
		return false
	}
	for _, p := range markupPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// The transform pipeline. Order is a contract: headings before emphasis so
// a leading "#" is not eaten by italic handling, and emphasis before the
// newline-to-break collapse so multi-line bold/italic spans survive intact.
var (
	h3Rule         = rule{regexp.MustCompile(`(?m)^### (.*)$`), "<h5>$1</h5>"}
	h2Rule         = rule{regexp.MustCompile(`(?m)^## (.*)$`), "<h4>$1</h4>"}
	h1Rule         = rule{regexp.MustCompile(`(?m)^# (.*)$`), "<h3>$1</h3>"}
	boldRule       = rule{regexp.MustCompile(`(?s)\*\*(.*?)\*\*`), "<strong>$1</strong>"}
	italicRule     = rule{regexp.MustCompile(`(?s)\*(.*?)\*`), "<em>$1</em>"}
	inlineCodeRule = rule{regexp.MustCompile("`([^`]+)`"), "<code>$1</code>"}
	fencedRule     = rule{regexp.MustCompile("(?s)```(.*?)```"), "<pre><code>$1</code></pre>"}
	bulletRule     = rule{regexp.MustCompile(`(?m)^- (.*)$`), "<li>$1</li>"}
	quoteRule      = rule{regexp.MustCompile(`(?m)^> (.*)$`), "<blockquote>$1</blockquote>"}
	paraRule       = rule{regexp.MustCompile(`\n\n`), "<br><br>"}
	breakRule      = rule{regexp.MustCompile(`\n`), "<br>"}
	collapseRule   = rule{regexp.MustCompile(`(<br>){3,}`), "<br><br>"}

	listWrapRule = rule{regexp.MustCompile(`(?s)(<li>.*</li>)`), "<ul>$1</ul>"}

	pipeline = []rule{
		h3Rule, h2Rule, h1Rule,
		boldRule, italicRule,
		inlineCodeRule, fencedRule,
		bulletRule, listWrapRule,
		quoteRule,
		paraRule, breakRule, collapseRule,
	}
)

type rule struct {
	pattern *regexp.Regexp
	repl    string
}

// ToSafeHTML runs the ordered transform pipeline over text. It never panics:
// on any internal failure the original text comes back unmodified, so the
// caller can always render something.
func ToSafeHTML(text string) (html string) {
	defer func() {
		if r := recover(); r != nil {
			html = text
		}
	}()

	html = text
	for _, r := range pipeline {
		html = r.pattern.ReplaceAllString(html, r.repl)
	}
	return html
}
