// Package action models the ticket-store actions a model may propose, and decodes and
// validates the model's {"actions": [...]} documents.
package action

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Action type tags as they appear in the "type" field.
const (
	TypeCreateTicket      = "create_ticket"
	TypeTransitionTicket  = "transition_ticket"
	TypeAddComment        = "add_comment"
	TypeUseExistingTicket = "use_existing_ticket"
)

// DefaultIssueType is used for create_ticket when issue_type is omitted.
const DefaultIssueType = "Task"

// Action is one proposed ticket-store action. The concrete types are CreateTicket,
// TransitionTicket, AddComment, UseExistingTicket, Unknown and Malformed.
type Action interface {
	// Kind returns the "type" tag.
	Kind() string
	isAction()
}

// CreateTicket opens a new issue.
type CreateTicket struct {
	Project     string   `json:"project,omitempty"`
	Summary     string   `json:"summary"`
	Description string   `json:"description,omitempty"`
	IssueType   string   `json:"issue_type,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

// TransitionTicket moves an issue through the workflow.
type TransitionTicket struct {
	IssueKey       string `json:"issue_key"`
	TransitionName string `json:"transition_name"`
}

// AddComment posts a comment on an issue.
type AddComment struct {
	IssueKey    string `json:"issue_key"`
	CommentBody string `json:"comment_body"`
}

// UseExistingTicket records that an existing issue already covers the change.
type UseExistingTicket struct {
	IssueKey   string  `json:"issue_key"`
	Similarity float64 `json:"similarity"`
	Reason     string  `json:"reason,omitempty"`
}

// Unknown carries an action whose type tag is not recognized.
type Unknown struct {
	Type   string
	Fields map[string]any
}

// Malformed carries an action with a known type tag whose fields could not be decoded.
type Malformed struct {
	Type   string
	Fields map[string]any
	Err    error
}

func (CreateTicket) Kind() string      { return TypeCreateTicket }
func (TransitionTicket) Kind() string  { return TypeTransitionTicket }
func (AddComment) Kind() string        { return TypeAddComment }
func (UseExistingTicket) Kind() string { return TypeUseExistingTicket }
func (u Unknown) Kind() string         { return u.Type }
func (m Malformed) Kind() string       { return m.Type }

func (CreateTicket) isAction()      {}
func (TransitionTicket) isAction()  {}
func (AddComment) isAction()        {}
func (UseExistingTicket) isAction() {}
func (Unknown) isAction()           {}
func (Malformed) isAction()         {}

// MarshalJSON emits the action with its "type" tag.
func (a CreateTicket) MarshalJSON() ([]byte, error) {
	type plain CreateTicket
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{TypeCreateTicket, plain(a)})
}

// MarshalJSON emits the action with its "type" tag.
func (a TransitionTicket) MarshalJSON() ([]byte, error) {
	type plain TransitionTicket
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{TypeTransitionTicket, plain(a)})
}

// MarshalJSON emits the action with its "type" tag.
func (a AddComment) MarshalJSON() ([]byte, error) {
	type plain AddComment
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{TypeAddComment, plain(a)})
}

// MarshalJSON emits the action with its "type" tag.
func (a UseExistingTicket) MarshalJSON() ([]byte, error) {
	type plain UseExistingTicket
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{TypeUseExistingTicket, plain(a)})
}

// MarshalJSON emits the original fields unchanged.
func (u Unknown) MarshalJSON() ([]byte, error) {
	return marshalFields(u.Type, u.Fields)
}

// MarshalJSON emits the original fields unchanged.
func (m Malformed) MarshalJSON() ([]byte, error) {
	return marshalFields(m.Type, m.Fields)
}

func marshalFields(kind string, fields map[string]any) ([]byte, error) {
	out := make(map[string]any, len(fields)+1)
	maps.Copy(out, fields)
	if _, ok := out["type"]; !ok {
		out["type"] = kind
	}
	return json.Marshal(out)
}

// Summary is a one-line human description of the action.
func Summary(a Action) string {
	switch v := a.(type) {
	case CreateTicket:
		project := v.Project
		if project == "" {
			project = "default project"
		}
		return fmt.Sprintf("Create %s in %s: %q", v.IssueType, project, v.Summary)
	case TransitionTicket:
		return fmt.Sprintf("Move %s to %q", v.IssueKey, v.TransitionName)
	case AddComment:
		return fmt.Sprintf("Comment on %s", v.IssueKey)
	case UseExistingTicket:
		return fmt.Sprintf("Use existing %s (similarity %.2f)", v.IssueKey, v.Similarity)
	case Malformed:
		return fmt.Sprintf("Malformed %s action: %v", v.Type, v.Err)
	case nil:
		return "empty action"
	default:
		return fmt.Sprintf("Unsupported %q action", a.Kind())
	}
}
