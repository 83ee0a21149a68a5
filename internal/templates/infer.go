package templates

import (
	"regexp"
	"strings"
)

// keywords per type, matched as whole words (with an optional plural s).
var keywords = []struct {
	qt    QuestionType
	words []string
}{
	{Array, []string{"array", "list", "subarray", "matrix"}},
	{String, []string{"string", "text", "substring", "character", "palindrome"}},
	{Tree, []string{"tree", "node", "binary", "bst", "root"}},
}

var wordRe = regexp.MustCompile(`[a-z]+`)

// InferType picks a question type from free text. The first text with any
// keyword hit decides: the type with the most hits wins, ties go to the
// type whose first hit comes earliest. With no hits anywhere the result is
// Array.
func InferType(texts ...string) QuestionType {
	for _, text := range texts {
		if qt, ok := inferOne(text); ok {
			return qt
		}
	}
	return Array
}

func inferOne(text string) (QuestionType, bool) {
	words := wordRe.FindAllString(strings.ToLower(text), -1)

	var (
		best      QuestionType
		bestCount int
		bestFirst int
	)
	for _, k := range keywords {
		count, first := 0, -1
		for i, w := range words {
			if matchesAny(w, k.words) {
				if first < 0 {
					first = i
				}
				count++
			}
		}
		if count == 0 {
			continue
		}
		if count > bestCount || (count == bestCount && first < bestFirst) {
			best, bestCount, bestFirst = k.qt, count, first
		}
	}
	return best, bestCount > 0
}

func matchesAny(word string, candidates []string) bool {
	for _, c := range candidates {
		if word == c || word == c+"s" {
			return true
		}
	}
	return false
}
