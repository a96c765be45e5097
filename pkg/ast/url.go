package ast

import (
	"fmt"
	"net/url"
)

// ResolveURL resolves ref against the URL of the importing document.
func ResolveURL(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid document URL %q: %w", base, err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("malformed URL %q: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}
