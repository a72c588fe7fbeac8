package conv

import (
	stdhtml "html"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/inbucket/html2text"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = html.CommonFlags | html.HrefTargetBlank
	tgPolicy   = bluemonday.NewPolicy()
	termPolicy = bluemonday.UGCPolicy()
)

func init() {
	// Allowed tags https://core.telegram.org/bots/api#html-style
	tgPolicy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	tgPolicy.AllowAttrs("href").OnElements("a")
	tgPolicy.AllowAttrs("class").OnElements("code")
}

// render never panics; a renderer failure yields ok == false.
func render(md []byte, policy *bluemonday.Policy) (out []byte, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			out, ok = nil, false
		}
	}()

	// A fresh parser per document: gomarkdown parsers are single use.
	p := parser.NewWithExtensions(extensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})
	unsafeHTML := markdown.Render(p.Parse(md), renderer)

	return policy.SanitizeBytes(unsafeHTML), true
}

func MarkdownToTelegramHTML(md []byte) string {
	sanitized, ok := render(md, tgPolicy)
	if !ok {
		return stdhtml.EscapeString(string(md))
	}
	return string(sanitized)
}

// MarkdownToText renders markdown as plain terminal text. Input the
// renderer cannot handle is returned unchanged.
func MarkdownToText(md string) string {
	if strings.TrimSpace(md) == "" {
		return md
	}

	sanitized, ok := render([]byte(md), termPolicy)
	if !ok {
		return md
	}

	text, err := html2text.FromString(string(sanitized), html2text.Options{
		OmitLinks:    false,
		PrettyTables: true,
	})
	if err != nil {
		return md
	}
	return text
}
