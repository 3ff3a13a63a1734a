package tone

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Code points of the Mathematical Alphanumeric Symbols block used by the styles.
const (
	boldUpper       = 0x1D400
	boldLower       = 0x1D41A
	italicUpper     = 0x1D434
	italicLower     = 0x1D44E
	boldItalicUpper = 0x1D468
	boldItalicLower = 0x1D482
	boldDigitZero   = 0x1D7CE

	// Unicode leaves the italic small h slot empty; the Planck constant stands in for it.
	planckConstant = 0x210E

	mathBlockStart = 0x1D400
	mathBlockEnd   = 0x1D7FF
)

// smallCapsGlyphs holds the small-capital lookalike for each letter a..z.
const smallCapsGlyphs = "ᴀʙᴄᴅᴇꜰɢʜɪᴊᴋʟᴍɴᴏᴘǫʀꜱᴛᴜᴠᴡxʏᴢ"

var (
	boldTable       = offsetTable(boldUpper, boldLower, true)
	italicTable     = italicOffsetTable()
	boldItalicTable = offsetTable(boldItalicUpper, boldItalicLower, true)
	smallCapsTable  = smallCapsSubstitutions()

	smallCapsReverse = reverseSmallCaps()
)

func offsetTable(upper, lower rune, digits bool) map[rune]rune {
	t := make(map[rune]rune, 62)
	for i := rune(0); i < 26; i++ {
		t['A'+i] = upper + i
		t['a'+i] = lower + i
	}
	if digits {
		for i := rune(0); i < 10; i++ {
			t['0'+i] = boldDigitZero + i
		}
	}
	return t
}

func italicOffsetTable() map[rune]rune {
	t := offsetTable(italicUpper, italicLower, false)
	t['h'] = planckConstant
	return t
}

func smallCapsSubstitutions() map[rune]rune {
	t := make(map[rune]rune, 52)
	i := rune(0)
	for _, glyph := range smallCapsGlyphs {
		t['a'+i] = glyph
		t['A'+i] = glyph
		i++
	}
	return t
}

func reverseSmallCaps() map[rune]rune {
	t := make(map[rune]rune, 26)
	i := rune(0)
	for _, glyph := range smallCapsGlyphs {
		if glyph != 'x' {
			t[glyph] = 'a' + i
		}
		i++
	}
	return t
}

func tableFor(style UnicodeStyle) map[rune]rune {
	switch style {
	case StyleBold:
		return boldTable
	case StyleItalic:
		return italicTable
	case StyleBoldItalic:
		return boldItalicTable
	case StyleSmallCaps:
		return smallCapsTable
	}
	return nil
}

// ConvertToUnicode replaces every mapped character of text with its styled code point.
// Unmapped characters pass through; StyleNormal and unknown styles are the identity.
func ConvertToUnicode(text string, style UnicodeStyle) string {
	table := tableFor(style)
	if table == nil || text == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) * 4)
	for _, r := range text {
		if styled, ok := table[r]; ok {
			b.WriteRune(styled)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// emotionalStyles is the whole-text style per emotional tone.
var emotionalStyles = map[EmotionalTone]UnicodeStyle{
	Happy:   StyleNormal,
	Sad:     StyleSmallCaps,
	Angry:   StyleBold,
	Excited: StyleBoldItalic,
	Anxious: StyleNormal,
	Neutral: StyleNormal,
}

// emphasisStyles is the style applied to emphasized words. Unlike emotionalStyles, anxious
// emphasis is rendered in italic.
var emphasisStyles = map[EmotionalTone]UnicodeStyle{
	Happy:   StyleNormal,
	Sad:     StyleSmallCaps,
	Angry:   StyleBold,
	Excited: StyleBoldItalic,
	Anxious: StyleItalic,
	Neutral: StyleNormal,
}

// EmphasisStyle returns the style ConvertEmphasizedWords uses for tone.
func EmphasisStyle(tone EmotionalTone) UnicodeStyle {
	if s, ok := emphasisStyles[tone]; ok {
		return s
	}
	return StyleNormal
}

// ConvertByTone converts the whole text using the emotional tone's default style.
func ConvertByTone(text string, tone EmotionalTone) string {
	return ConvertToUnicode(text, emotionalStyles[tone])
}

// PreviewAllStyles renders text in every style, including the unconverted normal entry.
func PreviewAllStyles(text string) map[UnicodeStyle]string {
	out := make(map[UnicodeStyle]string, len(UnicodeStyles))
	for _, s := range UnicodeStyles {
		out[s] = ConvertToUnicode(text, s)
	}
	return out
}

// ContainsStyledUnicode reports whether text already carries styled characters.
func ContainsStyledUnicode(text string) bool {
	for _, r := range text {
		if isMathAlphanumeric(r) {
			return true
		}
		if _, ok := smallCapsReverse[r]; ok {
			return true
		}
	}
	return false
}

func isMathAlphanumeric(r rune) bool {
	return (r >= mathBlockStart && r <= mathBlockEnd) || r == planckConstant
}

// StripStyling maps styled characters back to ASCII. Small capitals fold to lowercase since
// the small-caps table does not keep case.
func StripStyling(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case isMathAlphanumeric(r):
			b.WriteString(norm.NFKC.String(string(r)))
		default:
			if plain, ok := smallCapsReverse[r]; ok {
				b.WriteRune(plain)
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ConvertEmphasizedWords styles only the given words, using the emphasis style for tone.
// Words are applied longest first so a short word cannot clobber part of a longer one.
// Leading and trailing punctuation is trimmed from each word. Matching is case-insensitive
// and only whole words match: a letter, digit, underscore or apostrophe next to a match
// means it sits inside a longer word or contraction. Every other character of text is left
// as is.
func ConvertEmphasizedWords(text string, tone EmotionalTone, words []string) string {
	style := EmphasisStyle(tone)
	if style == StyleNormal || len(words) == 0 {
		return text
	}

	sorted := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimFunc(w, isWordEdge); w != "" {
			sorted = append(sorted, w)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return utf8.RuneCountInString(sorted[i]) > utf8.RuneCountInString(sorted[j])
	})

	result := text
	for _, w := range sorted {
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(w))
		if err != nil {
			continue
		}
		result = replaceWholeWords(result, re, style)
	}
	return result
}

func replaceWholeWords(text string, re *regexp.Regexp, style UnicodeStyle) string {
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if before, _ := utf8.DecodeLastRuneInString(text[:start]); start > 0 && isWordRune(before) {
			continue
		}
		if after, _ := utf8.DecodeRuneInString(text[end:]); end < len(text) && isWordRune(after) {
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString(ConvertToUnicode(text[start:end], style))
		last = end
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_' || r == '\'' || r == '’'
}

func isWordEdge(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
}
