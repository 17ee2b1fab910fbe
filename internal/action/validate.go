package action

import (
	"errors"
	"fmt"
)

// ValidationError reports why a suggestion document does not have the required shape.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid suggestion document: " + e.Reason
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks the document structure only: a mapping with an "actions" sequence
// whose elements are mappings each carrying a "type" key. Field values are not inspected.
func Validate(doc any) error {
	root, ok := doc.(map[string]any)
	if !ok {
		return &ValidationError{Reason: "document is not an object"}
	}
	raw, ok := root["actions"]
	if !ok {
		return &ValidationError{Reason: `missing "actions" key`}
	}
	list, ok := raw.([]any)
	if !ok {
		return &ValidationError{Reason: `"actions" is not a list`}
	}
	for i, item := range list {
		if err := validateItem(item); err != nil {
			return &ValidationError{Reason: fmt.Sprintf("actions[%d]: %s", i, err.(*ValidationError).Reason)}
		}
	}
	return nil
}

func validateItem(item any) error {
	obj, ok := item.(map[string]any)
	if !ok {
		return &ValidationError{Reason: "action is not an object"}
	}
	if _, ok := obj["type"]; !ok {
		return &ValidationError{Reason: `action has no "type" key`}
	}
	return nil
}
