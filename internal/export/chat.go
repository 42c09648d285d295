package export

import (
	"regexp"
	"strings"

	"github.com/minicelia/celia/internal/types"
)

var (
	htmlTags   = regexp.MustCompile(`<[^>]*>`)
	spaceRuns  = regexp.MustCompile(`\s+`)
	unescapers = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
)

// BuildTranscript renders the chat as plain text: "Asesor: ..." for bot
// turns, "Tú: ..." for user turns, separated by blank lines.
func BuildTranscript(chat []types.ChatMessage) string {
	lines := make([]string, 0, len(chat))
	for _, msg := range chat {
		speaker := "Tú"
		if msg.Role == types.RoleBot {
			speaker = "Asesor"
		}
		lines = append(lines, speaker+": "+StripHTML(msg.Content))
	}
	return strings.Join(lines, "\n\n")
}

// StripHTML reduces stored markup to plain text: tags removed, the fixed
// entity table unescaped, whitespace normalized.
func StripHTML(markup string) string {
	text := htmlTags.ReplaceAllString(markup, " ")
	text = unescapers.Replace(text)
	return strings.TrimSpace(spaceRuns.ReplaceAllString(text, " "))
}
