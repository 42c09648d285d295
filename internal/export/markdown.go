package export

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/minicelia/celia/internal/types"
)

// emptyBody is the placeholder rendered when the draft has no sections.
const emptyBody = "_(sin contenido)_"

// BuildMarkdown assembles the canonical Markdown document: a fixed header
// block with the context fields, then one ##-titled block per draft entry in
// insertion order.
func BuildMarkdown(ctx types.Context, draft types.Draft) string {
	header := fmt.Sprintf(`# Propuesta — %s

- Entidad: %s
- Fecha límite: %s

---`, orDash(ctx.Proceso), orDash(ctx.Entidad), orDash(ctx.Fecha))

	var blocks []string
	for _, name := range draft.Order {
		content, ok := draft.Sections[name]
		if !ok {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("## %s\n%s", name, content))
	}
	body := strings.Join(blocks, "\n\n")
	if body == "" {
		body = emptyBody
	}
	return header + "\n\n" + body
}

var (
	listMerge    = regexp.MustCompile(`(<li>.*</li>\n?)+`)
	bulletPrefix = regexp.MustCompile(`^[-•]\s*`)
)

// MarkdownToDoc converts the Markdown document into a minimal HTML shell,
// line by line: heading markers become h1-h3, bullet markers become list
// items coalesced into a single list wrapper by a post-pass merge, blank
// lines become line breaks, everything else a paragraph.
func MarkdownToDoc(markdown string) string {
	lines := strings.Split(markdown, "\n")
	converted := make([]string, 0, len(lines))
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "### "):
			converted = append(converted, "<h3>"+l[4:]+"</h3>")
		case strings.HasPrefix(l, "## "):
			converted = append(converted, "<h2>"+l[3:]+"</h2>")
		case strings.HasPrefix(l, "# "):
			converted = append(converted, "<h1>"+l[2:]+"</h1>")
		case strings.HasPrefix(l, "- "), strings.HasPrefix(l, "• "):
			converted = append(converted, "<li>"+bulletPrefix.ReplaceAllString(l, "")+"</li>")
		case strings.TrimSpace(l) == "":
			converted = append(converted, "<br/>")
		default:
			converted = append(converted, "<p>"+l+"</p>")
		}
	}
	body := listMerge.ReplaceAllStringFunc(strings.Join(converted, "\n"), func(m string) string {
		return "<ul>" + m + "</ul>"
	})
	return `<!DOCTYPE html><html><head><meta charset="utf-8"></head><body>` + body + `</body></html>`
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
