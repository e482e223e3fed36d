package validation

import (
	"encoding/json"
	"net/http"
	"regexp"

	"svc/internal/errors"
)

// Validator is implemented by request bodies that check themselves.
type Validator interface {
	Validate() error
}

var branchNamePattern = regexp.MustCompile(`^[0-9a-zA-Z/_-]+$`)

// BranchName reports whether name is a syntactically valid branch name:
// non-empty, letters, digits, '/', '_' and '-' only.
func BranchName(name string) bool {
	return branchNamePattern.MatchString(name)
}

// ValidateBranchName returns a validation error for invalid names.
func ValidateBranchName(name string) error {
	if !BranchName(name) {
		return errors.ValidationError("invalid branch name", map[string]string{"name": name})
	}
	return nil
}

// DecodeRequest decodes a JSON body into v and validates it.
func DecodeRequest(r *http.Request, v Validator) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.ValidationError("invalid request body", nil)
	}
	return v.Validate()
}
