package tone

import (
	"regexp"
	"strings"
)

// sentenceEnd matches a run of terminators followed by whitespace or the end of the text.
var sentenceEnd = regexp.MustCompile(`[.!?]+(\s+|$)`)

var trailingTerminators = regexp.MustCompile(`[.!?]+$`)

// SplitIntoSentences segments text into trimmed, non-empty sentences in input order.
// Consecutive terminators ("?!", "...") stay attached to the sentence they end. A terminator
// run that is not followed by whitespace ("3.14") does not end a sentence, and text after the
// last terminator becomes the final sentence, so joining the result with single spaces
// reconstructs the input up to whitespace.
func SplitIntoSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var sentences []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// IsCompleteSentence reports whether the trimmed text ends in '.', '!' or '?'.
func IsCompleteSentence(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	switch t[len(t)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}

// SentenceEnding returns the maximal trailing run of terminators, or "".
func SentenceEnding(sentence string) string {
	return trailingTerminators.FindString(strings.TrimSpace(sentence))
}
