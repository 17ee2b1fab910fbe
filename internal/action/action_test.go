package action

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		doc   string
		valid bool
	}{
		{"empty list", `{"actions": []}`, true},
		{"typed elements", `{"actions": [{"type": "add_comment"}, {"type": "whatever", "x": 1}]}`, true},
		{"type with odd value", `{"actions": [{"type": 7}]}`, true},
		{"not an object", `[1, 2]`, false},
		{"missing actions", `{"suggestions": []}`, false},
		{"actions not a list", `{"actions": {"type": "add_comment"}}`, false},
		{"element not an object", `{"actions": ["add_comment"]}`, false},
		{"element without type", `{"actions": [{"issue_key": "PROJ-1"}]}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var doc any
			require.NoError(t, json.Unmarshal([]byte(tc.doc), &doc))
			err := Validate(doc)
			if tc.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestDecodeDocument(t *testing.T) {
	actions, err := DecodeDocument([]byte(`{"actions": [
		{"type": "create_ticket", "project": "PROJ", "summary": "Add retries", "labels": ["backend"]},
		{"type": "transition_ticket", "issue_key": "PROJ-1", "transition_name": "In Progress"},
		{"type": "add_comment", "issue_key": "PROJ-2", "comment_body": "Fixed in #42"},
		{"type": "use_existing_ticket", "issue_key": "PROJ-3", "similarity": 0.91, "reason": "same bug"},
		{"type": "delete_ticket", "issue_key": "PROJ-4"},
		{"type": "use_existing_ticket", "issue_key": "PROJ-5", "similarity": "high"}
	]}`))
	require.NoError(t, err)
	require.Len(t, actions, 6)

	assert.Equal(t, CreateTicket{Project: "PROJ", Summary: "Add retries", IssueType: DefaultIssueType, Labels: []string{"backend"}}, actions[0])
	assert.Equal(t, TransitionTicket{IssueKey: "PROJ-1", TransitionName: "In Progress"}, actions[1])
	assert.Equal(t, AddComment{IssueKey: "PROJ-2", CommentBody: "Fixed in #42"}, actions[2])
	assert.Equal(t, UseExistingTicket{IssueKey: "PROJ-3", Similarity: 0.91, Reason: "same bug"}, actions[3])

	unknown, ok := actions[4].(Unknown)
	require.True(t, ok)
	assert.Equal(t, "delete_ticket", unknown.Kind())

	malformed, ok := actions[5].(Malformed)
	require.True(t, ok)
	assert.Equal(t, TypeUseExistingTicket, malformed.Kind())
	assert.Error(t, malformed.Err)
}

func TestDecodeDocumentRejectsBadShape(t *testing.T) {
	_, err := DecodeDocument([]byte(`not json`))
	assert.True(t, IsValidationError(err))

	_, err = DecodeDocument([]byte(`{"actions": "none"}`))
	assert.True(t, IsValidationError(err))
}

func TestMarshalIncludesType(t *testing.T) {
	raw, err := json.Marshal(TransitionTicket{IssueKey: "PROJ-1", TransitionName: "Done"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"transition_ticket","issue_key":"PROJ-1","transition_name":"Done"}`, string(raw))

	raw, err = json.Marshal(Unknown{Type: "archive", Fields: map[string]any{"type": "archive", "issue_key": "X-1"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"archive","issue_key":"X-1"}`, string(raw))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := []Action{
		CreateTicket{Project: "PROJ", Summary: "s", IssueType: "Bug"},
		AddComment{IssueKey: "PROJ-1", CommentBody: "hi"},
	}
	raw, err := EncodeDocument(in)
	require.NoError(t, err)

	out, err := DecodeDocument(raw)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	raw, err = EncodeDocument(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"actions":[]}`, string(raw))
}

func TestParseOne(t *testing.T) {
	a, err := ParseOne([]byte(`{"type": "add_comment", "issue_key": "PROJ-9", "comment_body": "edited"}`))
	require.NoError(t, err)
	assert.Equal(t, AddComment{IssueKey: "PROJ-9", CommentBody: "edited"}, a)

	for _, bad := range []string{
		`{"type": "add_comment", `,
		`["add_comment"]`,
		`{"issue_key": "PROJ-9"}`,
		`{"type": "use_existing_ticket", "similarity": "very"}`,
	} {
		_, err := ParseOne([]byte(bad))
		assert.Error(t, err, bad)
	}
}

func TestSummary(t *testing.T) {
	assert.Equal(t, `Move PROJ-1 to "Done"`, Summary(TransitionTicket{IssueKey: "PROJ-1", TransitionName: "Done"}))
	assert.Equal(t, `Create Task in default project: "x"`, Summary(CreateTicket{Summary: "x", IssueType: "Task"}))
	assert.Equal(t, `Unsupported "archive" action`, Summary(Unknown{Type: "archive"}))
}
