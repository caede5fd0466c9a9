// Package export renders conversations and guides as portable documents.
package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"ui-guide-go/internal/model"
)

// Document is an exported Markdown file.
type Document struct {
	Title     string
	Context   string
	Content   string
	Generated time.Time
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	unsafeNameRe = regexp.MustCompile(`[/\\?%*:|"<>]`)
)

// Markdown renders the document. Title and context are folded onto one line
// each; Content is written verbatim.
func (d Document) Markdown() string {
	return fmt.Sprintf("# %s\n\nGenerated: %s\n\nContext: %s\n\n%s\n",
		singleLine(d.Title),
		d.Generated.Format(model.TimeFormat),
		singleLine(d.Context),
		d.Content,
	)
}

// ExtractContent returns the Content portion of a rendered document.
func ExtractContent(markdown string) (string, bool) {
	i := strings.Index(markdown, "\n\nContext: ")
	if i < 0 {
		return "", false
	}
	rest := markdown[i+len("\n\nContext: "):]
	j := strings.Index(rest, "\n\n")
	if j < 0 {
		return "", false
	}
	body := rest[j+2:]
	if !strings.HasSuffix(body, "\n") {
		return "", false
	}
	return strings.TrimSuffix(body, "\n"), true
}

// GuideDocument maps a guide onto the export template.
func GuideDocument(g model.Guide, now time.Time) Document {
	return Document{Title: g.Title, Context: g.Context, Content: g.Response, Generated: now}
}

// ConversationDocument maps a conversation onto the export template using its transcript.
func ConversationDocument(c model.Conversation, now time.Time) Document {
	return Document{
		Title:     c.Title,
		Context:   "Chat transcript (thread " + c.ThreadID + ")",
		Content:   Transcript(c.Messages),
		Generated: now,
	}
}

// Transcript renders one level-2 section per message.
func Transcript(messages []model.ChatMessage) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		var b strings.Builder
		b.WriteString("## ")
		b.WriteString(roleLabel(m.Role))
		b.WriteString("\n")
		b.WriteString(m.Content)
		b.WriteString("\n")
		if m.Role == model.RoleAssistant && len(m.Sources) > 0 {
			b.WriteString("\nSources:\n")
			for _, s := range m.Sources {
				b.WriteString("- ")
				b.WriteString(CitationLabel(s))
				b.WriteString("\n")
			}
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n")
}

// CitationLabel formats a source as "<document> - Page <page>".
func CitationLabel(c model.Citation) string {
	doc := c.Document
	if doc == "" {
		doc = "UI document"
	}
	page := string(c.Page)
	if page == "" {
		page = "N/A"
	}
	return doc + " - Page " + page
}

// FileName derives a download name from a title.
func FileName(title, ext string) string {
	name := unsafeNameRe.ReplaceAllString(strings.ToLower(title), " ")
	name = strings.TrimSpace(name)
	name = whitespaceRe.ReplaceAllString(name, "-")
	if name == "" {
		name = "export"
	}
	return name + "." + ext
}

func roleLabel(r model.Role) string {
	if r == model.RoleUser {
		return "User"
	}
	return "UI Guide"
}

func singleLine(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
