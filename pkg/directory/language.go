package directory

import (
	"golang.org/x/text/language"
)

// MatchLanguage picks the best supported language tag for a recipient's
// preferred one, so localized alert variants reach people in a language
// they read. Matching follows BCP 47 semantics: "zh-TW" matches a
// supported "zh-Hant" variant, "en-GB" falls back to "en". The first
// supported tag is the fallback when nothing matches or the preference
// is empty or malformed.
func MatchLanguage(supported []string, preferred string) string {
	if len(supported) == 0 {
		return ""
	}
	if preferred == "" {
		return supported[0]
	}

	tags := make([]language.Tag, 0, len(supported))
	valid := make([]string, 0, len(supported))
	for _, s := range supported {
		tag, err := language.Parse(s)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		valid = append(valid, s)
	}
	if len(tags) == 0 {
		return supported[0]
	}

	want, err := language.Parse(preferred)
	if err != nil {
		return supported[0]
	}

	matcher := language.NewMatcher(tags)
	_, index, confidence := matcher.Match(want)
	if confidence == language.No {
		return supported[0]
	}
	return valid[index]
}
