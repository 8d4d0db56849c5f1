// Package cts parses CTS URNs and passage references for canonical texts.
//
// A CTS URN names one work and edition, for example
// urn:cts:greekLit:tlg0012.tlg001.perseus-grc2. The URN is the sole
// deduplication key for ingested texts.
package cts

import (
	"fmt"
	"strings"
)

// Known corpus namespaces and their default languages.
const (
	LanguageGreek = "grc"
	LanguageLatin = "lat"
)

// URN is a parsed CTS URN.
type URN struct {
	Namespace string // corpus namespace, e.g. "greekLit"
	TextGroup string // text group, e.g. "tlg0012" (Homer)
	Work      string // work within the group, e.g. "tlg001" (Iliad)
	Version   string // edition/version, e.g. "perseus-grc2"

	raw string
}

// ParseURN parses a CTS URN of the form urn:cts:<namespace>:<work-id>.
func ParseURN(s string) (*URN, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 4 || parts[0] != "urn" || parts[1] != "cts" {
		return nil, fmt.Errorf("not a CTS URN: %q", s)
	}
	u := &URN{
		Namespace: parts[2],
		raw:       s,
	}
	if u.Namespace == "" {
		return nil, fmt.Errorf("CTS URN has empty namespace: %q", s)
	}
	work := strings.Split(parts[3], ".")
	u.TextGroup = work[0]
	if len(work) > 1 {
		u.Work = work[1]
	}
	if len(work) > 2 {
		u.Version = work[2]
	}
	return u, nil
}

// String returns the original URN string.
func (u *URN) String() string {
	return u.raw
}

// Language returns the language implied by the URN's namespace.
func (u *URN) Language() string {
	return InferLanguage(u.raw)
}

// InferLanguage infers a language code from substrings of an identifier.
// greekLit identifiers are Greek, latinLit identifiers are Latin, and
// anything else defaults to Greek. Works on loosely-formed identifiers that
// ParseURN would reject.
func InferLanguage(identifier string) string {
	switch {
	case strings.Contains(identifier, "greekLit"):
		return LanguageGreek
	case strings.Contains(identifier, "latinLit"):
		return LanguageLatin
	default:
		return LanguageGreek
	}
}
