// ABOUTME: Outreach message rendering with {placeholder} substitution
// ABOUTME: Builds render variables from a referral and the advisor profile
package templates

import (
	"regexp"

	"github.com/harperreed/warmpath/models"
)

// DefaultReason is used for {reason} when the referral carries no note.
const DefaultReason = "it seems like a good fit"

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// Render replaces every {identifier} in body with vars[identifier]. Unknown
// identifiers become empty strings; anything that is not a well-formed
// placeholder is left as written.
func Render(body string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(body, func(match string) string {
		return vars[match[1:len(match)-1]]
	})
}

// Placeholders lists the distinct identifiers referenced by body in order of
// first appearance.
func Placeholders(body string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(body, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		keys = append(keys, m[1])
	}
	return keys
}

// VarNames lists the identifiers Vars always provides.
var VarNames = []string{
	"clientName",
	"prospectName",
	"advisorName",
	"valueProp",
	"calendarLink",
	"context",
	"reason",
}

// Unknown returns the placeholders in body that Vars never supplies.
func Unknown(body string) []string {
	known := make(map[string]bool, len(VarNames))
	for _, name := range VarNames {
		known[name] = true
	}
	var out []string
	for _, key := range Placeholders(body) {
		if !known[key] {
			out = append(out, key)
		}
	}
	return out
}

// Vars builds the render variables for a referral.
func Vars(r models.Referral, profile models.AdvisorProfile) map[string]string {
	advisor := profile.AdvisorName
	if advisor == "" {
		advisor = "Advisor"
	}
	reason := r.Note
	if reason == "" {
		reason = DefaultReason
	}
	return map[string]string{
		"clientName":   r.ClientName,
		"prospectName": r.Prospect.Name,
		"advisorName":  advisor,
		"valueProp":    profile.ValueProp,
		"calendarLink": profile.CalendarLink,
		"context":      r.Note,
		"reason":       reason,
	}
}
