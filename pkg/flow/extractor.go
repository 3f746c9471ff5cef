package flow

import (
	"regexp"
	"strings"
)

var (
	kvLinePattern = regexp.MustCompile(`^\s*([a-zA-Z_][a-zA-Z0-9_]{1,40})\s*[:=]\s*(.+?)\s*$`)

	mfaWorkingPattern = regexp.MustCompile(`\b(mfa|2fa)\b.*\b(yes|works|working)\b`)
	mfaBrokenPattern  = regexp.MustCompile(`\b(mfa|2fa)\b.*\b(no|broken|fails|failing)\b`)
)

// stepKeys are inline keys reporting troubleshooting already performed. They
// feed steps_attempted instead of the collected map.
var stepKeys = map[string]bool{
	"tried":           true,
	"steps_attempted": true,
}

type osRule struct {
	value   string
	needles []string
}

// Evaluated in order; the first rule with a matching substring wins.
var osRules = []osRule{
	{value: "Windows", needles: []string{"windows"}},
	{value: "macOS", needles: []string{"macos", "mac os", "osx", "os x", "mac"}},
	{value: "Android", needles: []string{"android"}},
	{value: "iOS", needles: []string{"iphone", "ipad", "ios"}},
	{value: "Linux", needles: []string{"linux", "ubuntu", "debian", "mint"}},
}

// MergeResult reports what a merge pass contributed besides the collected map.
type MergeResult struct {
	// Steps are troubleshooting steps reported inline, in message order.
	Steps []string
}

// MergeCollected folds the three field sources into collected, in place:
// explicit context (first write wins), inline key/value lines (override), then
// heuristic guesses (first write wins). A nil or blank value does not count as
// a first write.
func MergeCollected(collected map[string]any, context map[string]any, message string) MergeResult {
	for k, v := range context {
		if v == nil {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		if !isSet(collected, key) {
			collected[key] = v
		}
	}

	var result MergeResult
	for _, kv := range ExtractKeyValues(message) {
		if stepKeys[kv.Key] {
			result.Steps = append(result.Steps, splitSteps(kv.Value)...)
			continue
		}
		collected[kv.Key] = kv.Value
	}

	for k, v := range GuessFields(message) {
		if !isSet(collected, k) {
			collected[k] = v
		}
	}

	return result
}

// KeyValue is one parsed "key: value" or "key = value" line.
type KeyValue struct {
	Key   string
	Value string
}

// ExtractKeyValues parses inline fields from message. Lines that do not match
// the expected shape are skipped. Keys are lower-cased; a later line for the
// same key wins.
func ExtractKeyValues(message string) []KeyValue {
	var out []KeyValue
	index := map[string]int{}
	for _, line := range strings.Split(message, "\n") {
		m := kvLinePattern.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		key := strings.ToLower(m[1])
		value := strings.TrimSpace(m[2])
		if stepKeys[key] {
			out = append(out, KeyValue{Key: key, Value: value})
			continue
		}
		if i, seen := index[key]; seen {
			out[i].Value = value
			continue
		}
		index[key] = len(out)
		out = append(out, KeyValue{Key: key, Value: value})
	}
	return out
}

// GuessFields derives os and mfa_working from free text.
func GuessFields(message string) map[string]any {
	m := strings.ToLower(message)
	guessed := map[string]any{}

	for _, rule := range osRules {
		if containsAny(m, rule.needles) {
			guessed["os"] = rule.value
			break
		}
	}

	if mfaWorkingPattern.MatchString(m) {
		guessed["mfa_working"] = "yes"
	}
	if mfaBrokenPattern.MatchString(m) {
		guessed["mfa_working"] = "no"
	}

	return guessed
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func splitSteps(value string) []string {
	var steps []string
	for _, part := range strings.Split(value, ";") {
		if step := strings.TrimSpace(part); step != "" {
			steps = append(steps, step)
		}
	}
	return steps
}
