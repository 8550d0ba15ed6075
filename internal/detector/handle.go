package detector

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// digitRun flags usernames containing eight or more consecutive digits.
var digitRun = regexp.MustCompile(`\d{8,}`)

// genericPatterns flag machine-generated looking usernames. Matched against
// the bare username label, case-insensitively, anchored at both ends.
var genericPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^user\d{6,}$`),
	regexp.MustCompile(`(?i)^account\d{6,}$`),
	regexp.MustCompile(`(?i)^bot\d+$`),
	regexp.MustCompile(`(?i)^\w+\d{8,}$`),
}

// usernameLabel extracts the bare username from a handle. Handles are DNS
// names whose registrable domain carries no signal about the user, so the
// effective-TLD-plus-one suffix is stripped first; when the handle is not a
// parseable domain the first dot-separated label is used instead.
func usernameLabel(handle string) string {
	username := handle
	if suffix, err := publicsuffix.EffectiveTLDPlusOne(handle); err == nil && suffix != handle {
		username = strings.TrimSuffix(handle, "."+suffix)
	}
	label, _, _ := strings.Cut(username, ".")
	return label
}

// suspiciousUsername reports whether a handle looks machine-generated:
// an 8+ digit run anywhere in the username, or one of the generic
// user/account/bot numbered patterns.
func suspiciousUsername(handle string) bool {
	username := usernameLabel(handle)
	if digitRun.MatchString(username) {
		return true
	}
	for _, p := range genericPatterns {
		if p.MatchString(username) {
			return true
		}
	}
	return false
}

// handleSignal flags suspicious username patterns.
type handleSignal struct{}

func (handleSignal) Name() string { return "handle-pattern" }

func (handleSignal) Evaluate(in Input) []Contribution {
	if !suspiciousUsername(in.Profile.Handle) {
		return nil
	}
	return []Contribution{{
		Weight: 0.3,
		Reason: fmt.Sprintf("Suspicious username pattern: %s", in.Profile.Handle),
	}}
}
