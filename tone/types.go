package tone

import "fmt"

// EmotionalTone is the primary feeling expressed by a sentence.
type EmotionalTone string

const (
	Happy   EmotionalTone = "happy"
	Sad     EmotionalTone = "sad"
	Angry   EmotionalTone = "angry"
	Excited EmotionalTone = "excited"
	Anxious EmotionalTone = "anxious"
	Neutral EmotionalTone = "neutral"
)

// EmotionalTones lists every emotional tone in classification priority order, neutral last.
var EmotionalTones = []EmotionalTone{Happy, Sad, Angry, Excited, Anxious, Neutral}

// Valid reports whether t is one of the closed set of emotional tones.
func (t EmotionalTone) Valid() bool {
	switch t {
	case Happy, Sad, Angry, Excited, Anxious, Neutral:
		return true
	}
	return false
}

// StyleTone is the communicative register of a sentence, independent of its emotional tone.
type StyleTone string

const (
	Formal    StyleTone = "formal"
	Casual    StyleTone = "casual"
	Sarcastic StyleTone = "sarcastic"
	Urgent    StyleTone = "urgent"
	Friendly  StyleTone = "friendly"
)

var StyleTones = []StyleTone{Formal, Casual, Sarcastic, Urgent, Friendly}

func (s StyleTone) Valid() bool {
	switch s {
	case Formal, Casual, Sarcastic, Urgent, Friendly:
		return true
	}
	return false
}

// UnicodeStyle is a character-substitution scheme rendered with dedicated code points.
type UnicodeStyle string

const (
	StyleNormal     UnicodeStyle = "normal"
	StyleBold       UnicodeStyle = "bold"
	StyleItalic     UnicodeStyle = "italic"
	StyleBoldItalic UnicodeStyle = "bold_italic"
	StyleSmallCaps  UnicodeStyle = "small_caps"
)

var UnicodeStyles = []UnicodeStyle{StyleNormal, StyleBold, StyleItalic, StyleBoldItalic, StyleSmallCaps}

func (s UnicodeStyle) Valid() bool {
	switch s {
	case StyleNormal, StyleBold, StyleItalic, StyleBoldItalic, StyleSmallCaps:
		return true
	}
	return false
}

// Intensity doubles as the analysed strength of a tone and as the emoji intensity setting.
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

func (i Intensity) Valid() bool {
	switch i {
	case IntensityLow, IntensityMedium, IntensityHigh:
		return true
	}
	return false
}

// EmojiCount is the number of emoji appended at this intensity. Unknown values count as medium.
func (i Intensity) EmojiCount() int {
	switch i {
	case IntensityLow:
		return 1
	case IntensityHigh:
		return 3
	default:
		return 2
	}
}

func (i Intensity) level() float64 {
	switch i {
	case IntensityLow:
		return 1
	case IntensityHigh:
		return 3
	default:
		return 2
	}
}

// EmojiPlacement controls where emoji are appended.
type EmojiPlacement string

const (
	EndOfSentence EmojiPlacement = "end_of_sentence"
	EndOfMessage  EmojiPlacement = "end_of_message"
)

func (p EmojiPlacement) Valid() bool {
	return p == EndOfSentence || p == EndOfMessage
}

// EmotionalScore is the emotional axis of a ToneAnalysis.
type EmotionalScore struct {
	Primary    EmotionalTone `json:"primary" yaml:"primary"`
	Confidence float64       `json:"confidence" yaml:"confidence"`
}

// StyleScore is the style axis of a ToneAnalysis.
type StyleScore struct {
	Primary    StyleTone `json:"primary" yaml:"primary"`
	Confidence float64   `json:"confidence" yaml:"confidence"`
}

// ToneAnalysis is the result of classifying one unit of text.
type ToneAnalysis struct {
	Emotional EmotionalScore `json:"emotional" yaml:"emotional"`
	Style     StyleScore     `json:"style" yaml:"style"`
	Intensity Intensity      `json:"intensity" yaml:"intensity"`

	// EmphasizedWords are substrings of the source sentence that would be vocally stressed.
	// Only the remote classifier fills this in.
	EmphasizedWords []string `json:"emphasized_words" yaml:"emphasized_words"`
}

// DefaultTone is the neutral/casual analysis used for empty input and as the zero-sentence aggregate.
func DefaultTone() ToneAnalysis {
	return ToneAnalysis{
		Emotional:       EmotionalScore{Primary: Neutral, Confidence: 1.0},
		Style:           StyleScore{Primary: Casual, Confidence: 1.0},
		Intensity:       IntensityMedium,
		EmphasizedWords: []string{},
	}
}

// AnalyzedSentence is one sentence of a message together with its tone and rendered form.
type AnalyzedSentence struct {
	Original string       `json:"original" yaml:"original"`
	Tone     ToneAnalysis `json:"tone" yaml:"tone"`
	Enhanced string       `json:"enhanced" yaml:"enhanced"`
}

// EnhancedMessage is the sole externally consumed artifact of an enhancement call.
type EnhancedMessage struct {
	Original    string             `json:"original" yaml:"original"`
	Enhanced    string             `json:"enhanced" yaml:"enhanced"`
	Sentences   []AnalyzedSentence `json:"sentences" yaml:"sentences"`
	OverallTone ToneAnalysis       `json:"overall_tone" yaml:"overall_tone"`
}

// PreviewResult is the reduced output handed to live-preview surfaces.
type PreviewResult struct {
	Enhanced string        `json:"enhanced" yaml:"enhanced"`
	Tone     EmotionalTone `json:"tone" yaml:"tone"`
}

// Preview reduces the message to its live-preview form.
func (m EnhancedMessage) Preview() PreviewResult {
	return PreviewResult{Enhanced: m.Enhanced, Tone: m.OverallTone.Emotional.Primary}
}

// Settings configures an enhancement call. It is passed by value and never mutated by the pipeline.
type Settings struct {
	EnableEmojis   bool           `json:"enable_emojis" toml:"enable_emojis" yaml:"enable_emojis"`
	EnableStyling  bool           `json:"enable_styling" toml:"enable_styling" yaml:"enable_styling"`
	EmojiIntensity Intensity      `json:"emoji_intensity" toml:"emoji_intensity" yaml:"emoji_intensity"`
	EmojiPlacement EmojiPlacement `json:"emoji_placement" toml:"emoji_placement" yaml:"emoji_placement"`
}

// DefaultSettings returns emojis and styling on, medium intensity, end-of-sentence placement.
func DefaultSettings() Settings {
	return Settings{
		EnableEmojis:   true,
		EnableStyling:  true,
		EmojiIntensity: IntensityMedium,
		EmojiPlacement: EndOfSentence,
	}
}

func (s Settings) Validate() error {
	if !s.EmojiIntensity.Valid() {
		return fmt.Errorf("invalid emoji_intensity %q (want low, medium or high)", s.EmojiIntensity)
	}
	if !s.EmojiPlacement.Valid() {
		return fmt.Errorf("invalid emoji_placement %q (want end_of_sentence or end_of_message)", s.EmojiPlacement)
	}
	return nil
}
