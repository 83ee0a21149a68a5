package pipeline

import (
	"regexp"
	"strings"
)

var (
	// openingFence matches a fence marker with an optional language tag at
	// the very start of the text.
	openingFence = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\r?\n?")

	// fencedBlock matches the first complete Markdown code block.
	fencedBlock = regexp.MustCompile("(?s)```[A-Za-z0-9_+-]*[ \t]*\r?\n(.*?)\r?\n?[ \t]*```")
)

// Sanitize strips the formatting artifacts models wrap around JSON:
// Markdown fences, control characters and backslash escapes that JSON does
// not define. The result is trimmed.
func Sanitize(raw string) string {
	text := stripFences(raw)
	text = stripControl(text)
	text = fixEscapes(text)
	return strings.TrimSpace(text)
}

// stripFences removes the fence that wraps the payload. A payload that
// already starts with '{' is left alone, since string values may contain
// fenced code of their own.
func stripFences(raw string) string {
	text := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(text, "```"):
		text = openingFence.ReplaceAllString(text, "")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
		return text
	case strings.HasPrefix(text, "{"):
		return text
	}

	// Prose around a fenced block.
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

// stripControl drops C0 and C1 control characters (U+0000-U+001F and
// U+007F-U+009F).
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= 0x1F || (r >= 0x7F && r <= 0x9F) {
			return -1
		}
		return r
	}, s)
}

// fixEscapes removes the backslash from escape sequences JSON does not
// define (anything but \" \\ \/ \b \f \n \r \t \u). Escapes are consumed
// pairwise so an escaped backslash followed by a letter survives.
func fixEscapes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		next := s[i+1]
		switch next {
		case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
			b.WriteByte(c)
		}
		b.WriteByte(next)
		i++
	}
	return b.String()
}
