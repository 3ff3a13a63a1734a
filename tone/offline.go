package tone

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fixed confidences reported by the offline classifier.
const (
	offlineKeywordConfidence = 0.7
	offlineStrongConfidence  = 0.8
	offlineSarcasmConfidence = 0.6
	offlineDefaultConfidence = 0.5

	// shoutingMinRunes is the length above which an all-caps sentence reads as shouting.
	shoutingMinRunes = 10
)

var (
	happyWords   = regexp.MustCompile(`\b(happy|glad|excited|great|awesome|wonderful|love|yay|woohoo)\b`)
	intensifiers = regexp.MustCompile(`\b(so|really|very)\b`)
	sadWords     = regexp.MustCompile(`\b(sad|sorry|unfortunately|miss|down|depressed|cry|tears)\b`)
	angryWords   = regexp.MustCompile(`\b(angry|mad|furious|hate|annoyed|frustrated|stupid|ridiculous)\b`)
	excitedWords = regexp.MustCompile(`\b(omg|wow|amazing|incredible|can't wait|so excited)\b`)
	anxiousWords = regexp.MustCompile(`\b(worried|nervous|anxious|scared|afraid|unsure|maybe)\b`)

	formalWords    = regexp.MustCompile(`\b(please find|attached|regards|sincerely|dear|per our|as discussed)\b`)
	urgentWords    = regexp.MustCompile(`\b(asap|urgent|immediately|now|hurry|deadline)\b`)
	sarcasticWords = regexp.MustCompile(`\b(oh great|yeah right|sure thing|sure|right|whatever|totally|obviously)\b`)

	doubleBang = regexp.MustCompile(`!{2,}`)
	tripleBang = regexp.MustCompile(`!{3,}`)
)

// OfflineClassifier is the rule-based strategy. It needs no network and no credential.
type OfflineClassifier struct{}

// Classify implements Classifier. It never fails.
func (OfflineClassifier) Classify(_ context.Context, sentence, _ string) (ToneAnalysis, error) {
	return DetectToneOffline(sentence), nil
}

// DetectToneOffline classifies text with keyword and punctuation heuristics.
//
// Emotional rules, first match wins:
//  1. Happy: happy/glad/great/awesome/... or "!!" together with so/really/very
//  2. Sad: sad/sorry/unfortunately/miss/...
//  3. Angry: angry/mad/hate/... or shouting (all caps, longer than 10 runes); caps means high intensity
//  4. Excited: omg/wow/amazing/... or "!!!"; always high intensity
//  5. Anxious: worried/nervous/scared/...
//  6. Neutral otherwise
//
// Style rules, first match wins:
//  1. Formal: regards/sincerely/as discussed/...
//  2. Urgent: asap/urgent/now/deadline/... or "!!"
//  3. Sarcastic: oh great/yeah right/whatever/... together with an ellipsis or 🙄
//  4. Casual otherwise
//
// Lexical rules cannot tell which words carry vocal stress, so EmphasizedWords is always empty.
func DetectToneOffline(text string) ToneAnalysis {
	lower := strings.ToLower(text)
	caps := isAllCaps(text)

	analysis := ToneAnalysis{
		Emotional:       EmotionalScore{Primary: Neutral, Confidence: offlineDefaultConfidence},
		Style:           StyleScore{Primary: Casual, Confidence: offlineDefaultConfidence},
		Intensity:       IntensityMedium,
		EmphasizedWords: []string{},
	}

	switch {
	case happyWords.MatchString(lower) || (doubleBang.MatchString(text) && intensifiers.MatchString(lower)):
		analysis.Emotional = EmotionalScore{Primary: Happy, Confidence: offlineKeywordConfidence}
	case sadWords.MatchString(lower):
		analysis.Emotional = EmotionalScore{Primary: Sad, Confidence: offlineKeywordConfidence}
	case angryWords.MatchString(lower) || (caps && utf8.RuneCountInString(text) > shoutingMinRunes):
		analysis.Emotional = EmotionalScore{Primary: Angry, Confidence: offlineKeywordConfidence}
		if caps {
			analysis.Emotional.Confidence = offlineStrongConfidence
			analysis.Intensity = IntensityHigh
		}
	case excitedWords.MatchString(lower) || tripleBang.MatchString(text):
		analysis.Emotional = EmotionalScore{Primary: Excited, Confidence: offlineStrongConfidence}
		analysis.Intensity = IntensityHigh
	case anxiousWords.MatchString(lower):
		analysis.Emotional = EmotionalScore{Primary: Anxious, Confidence: offlineKeywordConfidence}
	}

	switch {
	case formalWords.MatchString(lower):
		analysis.Style = StyleScore{Primary: Formal, Confidence: offlineStrongConfidence}
	case urgentWords.MatchString(lower) || doubleBang.MatchString(text):
		analysis.Style = StyleScore{Primary: Urgent, Confidence: offlineStrongConfidence}
	case sarcasticWords.MatchString(lower) && hasSarcasmMarker(text):
		analysis.Style = StyleScore{Primary: Sarcastic, Confidence: offlineSarcasmConfidence}
	}

	return analysis
}

// isAllCaps reports whether text has letters and none of them are lowercase.
func isAllCaps(text string) bool {
	letters := false
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		if unicode.IsLower(r) {
			return false
		}
		letters = true
	}
	return letters
}

func hasSarcasmMarker(text string) bool {
	return strings.Contains(text, "...") || strings.Contains(text, "…") || strings.Contains(text, "🙄")
}
