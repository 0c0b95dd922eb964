package security

import (
	"html"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

func stripper() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// ContainsMarkup reports whether s carries HTML elements or comments that a
// strict sanitizer would remove. Plain text with stray "<" or "&" is not
// markup.
func ContainsMarkup(s string) bool {
	if s == "" {
		return false
	}
	return html.UnescapeString(stripper().Sanitize(s)) != s
}
