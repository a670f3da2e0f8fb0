package rules

import (
	"fmt"
	"strings"
)

// Key is a namespaced rule identifier: repository + rule id
type Key struct {
	Repository string
	Rule       string
}

// NewKey creates a rule key
func NewKey(repository, rule string) Key {
	return Key{Repository: repository, Rule: rule}
}

// String returns the host form "repository:rule"
func (k Key) String() string {
	return k.Repository + ":" + k.Rule
}

// ParseKey parses "repository:rule". The rule part may itself contain colons.
func ParseKey(s string) (Key, error) {
	repo, rule, ok := strings.Cut(s, ":")
	if !ok || repo == "" || rule == "" {
		return Key{}, fmt.Errorf("invalid rule key: %q (expected repository:rule)", s)
	}
	return Key{Repository: repo, Rule: rule}, nil
}
