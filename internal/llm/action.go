// Package llm holds helpers shared by the recommendation strategies in its subpackages.
package llm

import (
	"regexp"
	"strings"
)

var (
	// the option list from the prompt, often echoed back before the answer
	optionListRe = regexp.MustCompile(`\bBUY\s*[,/]\s*SELL\s*[,/]?\s*(?:(?i:or|and)\s+)?HOLD\b`)
	verdictRe    = regexp.MustCompile(`\b(?i:recommend(?:ation)?|call|verdict|answer|decision)\b\W*(?:(?i:is|would be|to)\W+)?(BUY|SELL|HOLD)\b`)
	actionRe     = regexp.MustCompile(`\b(BUY|SELL|HOLD)\b`)
)

// ParseAction extracts the BUY, SELL or HOLD call from a model reply, or "".
// An echoed "BUY, SELL, or HOLD" list is ignored. An explicit verdict
// ("Recommendation: **BUY**", "my call is SELL") wins; otherwise the last
// non-negated upper-case token is used. Lower-case prose ("hold on") never matches.
func ParseAction(text string) string {
	text = optionListRe.ReplaceAllString(text, " ")

	if m := verdictRe.FindAllStringSubmatch(text, -1); len(m) > 0 {
		return m[len(m)-1][1]
	}

	action := ""
	for _, loc := range actionRe.FindAllStringIndex(text, -1) {
		if negated(text[:loc[0]]) {
			continue
		}
		action = text[loc[0]:loc[1]]
	}
	return action
}

func negated(before string) bool {
	b := strings.ToLower(strings.TrimRight(before, " *_\"'`"))
	return b == "not" || strings.HasSuffix(b, " not") || strings.HasSuffix(b, "n't")
}
