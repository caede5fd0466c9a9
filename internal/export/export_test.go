package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui-guide-go/internal/model"
)

var generated = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func TestDocumentMarkdownLayout(t *testing.T) {
	doc := Document{Title: "Course registration", Context: "Student Portal", Content: "## Steps\n1. Log in", Generated: generated}

	assert.Equal(t,
		"# Course registration\n\nGenerated: 2025-03-14 09:30:00\n\nContext: Student Portal\n\n## Steps\n1. Log in\n",
		doc.Markdown())
}

func TestDocumentContentRoundTrip(t *testing.T) {
	contents := []string{
		"",
		"plain answer",
		"## Summary\n\nFirst.\n\n\n## Steps\n1. a\n",
		"Context: not a header\n\nGenerated: also not\n",
		"  leading and trailing whitespace  \n\n",
	}
	for _, content := range contents {
		doc := Document{Title: "Multi\nline   title", Context: "ctx\n\nwith breaks", Content: content, Generated: generated}
		got, ok := ExtractContent(doc.Markdown())
		require.True(t, ok)
		assert.Equal(t, content, got)
	}
}

func TestExtractContentRejectsForeignText(t *testing.T) {
	_, ok := ExtractContent("# Just a title\n")
	assert.False(t, ok)
}

func TestTranscript(t *testing.T) {
	messages := []model.ChatMessage{
		{Role: model.RoleAssistant, Content: "Hello!"},
		{Role: model.RoleUser, Content: "How do I pay fees?"},
		{Role: model.RoleAssistant, Content: "Use the bursary portal.", Sources: []model.Citation{
			{Document: "Fees Handbook", Page: "4"},
			{},
		}},
	}

	want := "## UI Guide\nHello!\n" +
		"\n## User\nHow do I pay fees?\n" +
		"\n## UI Guide\nUse the bursary portal.\n\nSources:\n- Fees Handbook - Page 4\n- UI document - Page N/A\n"
	assert.Equal(t, want, Transcript(messages))
}

func TestConversationDocument(t *testing.T) {
	conv := model.Conversation{
		Title:    "Fees",
		ThreadID: "chat_1",
		Messages: []model.ChatMessage{{Role: model.RoleUser, Content: "hi"}},
	}
	md := ConversationDocument(conv, generated).Markdown()

	assert.True(t, strings.HasPrefix(md, "# Fees\n"))
	assert.Contains(t, md, "Context: Chat transcript (thread chat_1)")
	assert.Contains(t, md, "## User\nhi\n")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "course-registration-guide.md", FileName("  Course Registration   Guide ", "md"))
	assert.Equal(t, "fees-2025.html", FileName("Fees/2025", "html"))
	assert.Equal(t, "export.md", FileName("", "md"))
}

func TestRenderHTML(t *testing.T) {
	doc := Document{Title: "Guide <1>", Context: "Library", Content: "- one\n- two\n\n<script>alert(1)</script>", Generated: generated}
	out, err := RenderHTML(doc.Title, doc.Markdown())
	require.NoError(t, err)

	assert.Contains(t, out, "<title>Guide &lt;1&gt;</title>")
	assert.Contains(t, out, "<h1>Guide &lt;1&gt;</h1>")
	assert.Contains(t, out, "<li>one</li>")
	assert.NotContains(t, out, "<script>")
}
