package tone

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Fixed, ordered emoji per emotional tone. Neutral never contributes decorative emoji.
var emotionalEmojis = map[EmotionalTone][]string{
	Happy:   {"😊", "🎉", "✨", "😄", "🌟", "💫"},
	Sad:     {"😢", "💔", "😔", "🥺", "😞", "💙"},
	Angry:   {"😤", "🔥", "😡", "💢", "😠", "⚡"},
	Excited: {"🚀", "⚡", "🎊", "🙌", "💥", "🎯"},
	Anxious: {"😰", "😬", "💭", "😟", "🫤", "😣"},
	Neutral: {},
}

// Accent emoji per style tone, used to pad short emotional lists.
var styleEmojis = map[StyleTone][]string{
	Formal:    {"📋", "✉️", "📝"},
	Casual:    {"👋", "😄", "🙂"},
	Sarcastic: {"😏", "🙄", "💅", "🤷"},
	Urgent:    {"⚠️", "❗", "🚨", "⏰"},
	Friendly:  {"💕", "🤗", "😊", "💫"},
}

// styleOverrides replace the emotional tone's visual style for some registers.
var styleOverrides = map[StyleTone]UnicodeStyle{
	Sarcastic: StyleItalic,
	Urgent:    StyleBold,
}

// Visuals is the full visual rendering of a tone combination.
type Visuals struct {
	Emojis       []string     `json:"emojis"`
	UnicodeStyle UnicodeStyle `json:"unicode_style"`
	StyleClass   string       `json:"style_class"`
}

func selectEmojis(emotional EmotionalTone, style StyleTone, intensity Intensity) []string {
	count := intensity.EmojiCount()
	list := emotionalEmojis[emotional]
	if len(list) > count {
		list = list[:count]
	}
	out := append([]string(nil), list...)
	if len(out) < count && style != Formal {
		accents := styleEmojis[style]
		need := count - len(out)
		if len(accents) > need {
			accents = accents[:need]
		}
		out = append(out, accents...)
	}
	return out
}

// EmojisFor returns up to intensity.EmojiCount() emoji for the tone combination: the emotional
// tone's list first, padded from the style tone's list unless the style is formal.
func EmojisFor(emotional EmotionalTone, style StyleTone, intensity Intensity) string {
	return strings.Join(selectEmojis(emotional, style, intensity), "")
}

// VisualsFor returns the emoji selection together with the resolved Unicode style and a
// style-class identifier for UI theming.
func VisualsFor(emotional EmotionalTone, style StyleTone, intensity Intensity) Visuals {
	unicodeStyle, ok := emotionalStyles[emotional]
	if !ok {
		unicodeStyle = StyleNormal
	}
	if override, ok := styleOverrides[style]; ok {
		unicodeStyle = override
	}
	return Visuals{
		Emojis:       selectEmojis(emotional, style, intensity),
		UnicodeStyle: unicodeStyle,
		StyleClass:   "tone-" + string(emotional),
	}
}

// AvailableEmojis returns a copy of the emoji list for an emotional tone.
func AvailableEmojis(tone EmotionalTone) []string {
	return append([]string(nil), emotionalEmojis[tone]...)
}

// StyleEmojis returns a copy of the accent list for a style tone.
func StyleEmojis(style StyleTone) []string {
	return append([]string(nil), styleEmojis[style]...)
}

// EmojiCount counts grapheme clusters, so "⚠️" (two code points) is one emoji.
func EmojiCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}
