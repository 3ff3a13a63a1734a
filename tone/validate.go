package tone

import (
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/theimaginaryfoundation/tonetype/tone/fileutils"
	"github.com/theimaginaryfoundation/tonetype/tone/provider"
)

// toneReply is the structured reply requested from the model. It only drives schema
// generation; replies are decoded loosely and normalized by ValidateToneAnalysis.
type toneReply struct {
	Emotional       toneReplyEmotional `json:"emotional" jsonschema:"required"`
	Style           toneReplyStyle     `json:"style" jsonschema:"required"`
	Intensity       string             `json:"intensity" jsonschema:"required,enum=low,enum=medium,enum=high"`
	EmphasizedWords []string           `json:"emphasizedWords" jsonschema:"required"`
}

type toneReplyEmotional struct {
	Primary    string  `json:"primary" jsonschema:"required,enum=happy,enum=sad,enum=angry,enum=excited,enum=anxious,enum=neutral"`
	Confidence float64 `json:"confidence" jsonschema:"required"`
}

type toneReplyStyle struct {
	Primary    string  `json:"primary" jsonschema:"required,enum=formal,enum=casual,enum=sarcastic,enum=urgent,enum=friendly"`
	Confidence float64 `json:"confidence" jsonschema:"required"`
}

var toneReplySchema = provider.GenerateSchema[toneReply]()

// toneReplyShape is the minimum structure a reply must have to be usable. Field values are
// not constrained here: unknown enums and out-of-range confidences are normalized, not rejected.
const toneReplyShape = `{
  "type": "object",
  "properties": {
    "emotional": {"type": "object"},
    "style": {"type": "object"},
    "emphasizedWords": {"type": "array"}
  }
}`

var toneReplyShapeSchema = jsonschema.MustCompileString("tone-reply-shape.json", toneReplyShape)

// ParseToneReply decodes the model's message content into a validated ToneAnalysis.
// Code fences are stripped first. A body that is not JSON or not object-shaped is an error.
func ParseToneReply(content string) (ToneAnalysis, error) {
	var raw interface{}
	if err := fileutils.DecodeModelJSON(content, &raw); err != nil {
		return ToneAnalysis{}, fmt.Errorf("decode tone reply: %w", err)
	}
	if err := toneReplyShapeSchema.Validate(raw); err != nil {
		return ToneAnalysis{}, fmt.Errorf("tone reply shape: %w", err)
	}
	return ValidateToneAnalysis(raw), nil
}

// ValidateToneAnalysis normalizes a decoded reply. Unknown emotional and style values become
// neutral and casual, unknown intensity becomes medium, confidences are clamped to [0,1]
// (missing ones default to 0.5), and only string entries of emphasizedWords are kept.
func ValidateToneAnalysis(data interface{}) ToneAnalysis {
	obj, _ := data.(map[string]interface{})

	emotional, _ := obj["emotional"].(map[string]interface{})
	style, _ := obj["style"].(map[string]interface{})

	primary := EmotionalTone(stringField(emotional, "primary"))
	if !primary.Valid() {
		primary = Neutral
	}
	stylePrimary := StyleTone(stringField(style, "primary"))
	if !stylePrimary.Valid() {
		stylePrimary = Casual
	}
	intensity := Intensity(stringField(obj, "intensity"))
	if !intensity.Valid() {
		intensity = IntensityMedium
	}

	words := []string{}
	if list, ok := obj["emphasizedWords"].([]interface{}); ok {
		for _, w := range list {
			if s, ok := w.(string); ok {
				words = append(words, s)
			}
		}
	}

	return ToneAnalysis{
		Emotional:       EmotionalScore{Primary: primary, Confidence: confidenceField(emotional)},
		Style:           StyleScore{Primary: stylePrimary, Confidence: confidenceField(style)},
		Intensity:       intensity,
		EmphasizedWords: words,
	}
}

func stringField(obj map[string]interface{}, key string) string {
	s, _ := obj[key].(string)
	return s
}

func confidenceField(obj map[string]interface{}) float64 {
	c, ok := obj["confidence"].(float64)
	if !ok {
		return 0.5
	}
	return clamp01(c)
}

func clamp01(v float64) float64 {
	switch {
	case v != v:
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
