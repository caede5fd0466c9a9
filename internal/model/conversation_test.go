package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatMessageJSONSourcesOnAssistantOnly(t *testing.T) {
	assistant, err := json.Marshal(ChatMessage{Role: RoleAssistant, Content: "No sources here."})
	require.NoError(t, err)
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(assistant, &fields))
	assert.JSONEq(t, `[]`, string(fields["sources"]))
	assert.JSONEq(t, `false`, string(fields["usedRetriever"]))

	user, err := json.Marshal(ChatMessage{Role: RoleUser, Content: "hi"})
	require.NoError(t, err)
	fields = nil
	require.NoError(t, json.Unmarshal(user, &fields))
	assert.NotContains(t, fields, "sources")
	assert.NotContains(t, fields, "usedRetriever")
	assert.JSONEq(t, `"hi"`, string(fields["content"]))
}

func TestChatMessageJSONRoundTrip(t *testing.T) {
	in := ChatMessage{
		Role:          RoleAssistant,
		Content:       "Use the portal.",
		UsedRetriever: true,
		Sources:       []Citation{{Document: "Fees.pdf", Page: "3"}},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out ChatMessage
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in.Role, out.Role)
	assert.Equal(t, in.Content, out.Content)
	assert.True(t, out.UsedRetriever)
	assert.Equal(t, in.Sources, out.Sources)
}
