package action

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Document is the {"actions": [...]} envelope.
type Document struct {
	Actions []Action `json:"actions"`
}

// DecodeDocument parses and validates a suggestion document and converts every element
// into an Action. Elements with an unrecognized type become Unknown; elements with a
// known type but undecodable fields become Malformed.
func DecodeDocument(data []byte) ([]Action, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ValidationError{Reason: "not valid JSON: " + err.Error()}
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}
	items := doc.(map[string]any)["actions"].([]any)
	out := make([]Action, 0, len(items))
	for _, item := range items {
		out = append(out, FromMap(item.(map[string]any)))
	}
	return out, nil
}

// EncodeDocument renders actions as an indented {"actions": [...]} document.
func EncodeDocument(actions []Action) ([]byte, error) {
	if actions == nil {
		actions = []Action{}
	}
	return json.MarshalIndent(Document{Actions: actions}, "", "  ")
}

// ParseOne decodes a single edited action. Unlike FromMap it fails on input that is not an
// object with a "type" key, and on known types whose fields do not decode.
func ParseOne(data []byte) (Action, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse action: %w", err)
	}
	if err := validateItem(raw); err != nil {
		return nil, err
	}
	a := FromMap(raw.(map[string]any))
	if m, ok := a.(Malformed); ok {
		return nil, fmt.Errorf("decode %s action: %w", m.Type, m.Err)
	}
	return a, nil
}

// FromMap converts one validated action mapping into its typed form.
func FromMap(fields map[string]any) Action {
	kind, ok := fields["type"].(string)
	if !ok {
		return Unknown{Type: fmt.Sprint(fields["type"]), Fields: fields}
	}

	var target Action
	var err error
	switch kind {
	case TypeCreateTicket:
		var a CreateTicket
		err = remarshal(fields, &a)
		if strings.TrimSpace(a.IssueType) == "" {
			a.IssueType = DefaultIssueType
		}
		target = a
	case TypeTransitionTicket:
		var a TransitionTicket
		err = remarshal(fields, &a)
		target = a
	case TypeAddComment:
		var a AddComment
		err = remarshal(fields, &a)
		target = a
	case TypeUseExistingTicket:
		var a UseExistingTicket
		err = remarshal(fields, &a)
		target = a
	default:
		return Unknown{Type: kind, Fields: fields}
	}
	if err != nil {
		return Malformed{Type: kind, Fields: fields, Err: err}
	}
	return target
}

func remarshal(fields map[string]any, target any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

// Pretty renders an action as indented JSON for display and editing.
func Pretty(a Action) string {
	raw, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Sprintf("%#v", a)
	}
	return string(raw)
}
