package tone

import (
	"math"
	"reflect"
	"testing"
)

func TestAggregateTones_Empty(t *testing.T) {
	t.Parallel()

	if got := AggregateTones(nil); !reflect.DeepEqual(got, DefaultTone()) {
		t.Fatalf("AggregateTones(nil)=%+v", got)
	}
}

func TestAggregateTones_SingleIsVerbatim(t *testing.T) {
	t.Parallel()

	one := ToneAnalysis{
		Emotional:       EmotionalScore{Primary: Angry, Confidence: 0.42},
		Style:           StyleScore{Primary: Urgent, Confidence: 0.3},
		Intensity:       IntensityLow,
		EmphasizedWords: []string{"now"},
	}
	if got := AggregateTones([]ToneAnalysis{one}); !reflect.DeepEqual(got, one) {
		t.Fatalf("AggregateTones=%+v", got)
	}
}

func TestAggregateTones_WeightedVote(t *testing.T) {
	t.Parallel()

	got := AggregateTones([]ToneAnalysis{
		{Emotional: EmotionalScore{Primary: Happy, Confidence: 0.9}, Style: StyleScore{Primary: Casual, Confidence: 0.5}, Intensity: IntensityLow},
		{Emotional: EmotionalScore{Primary: Sad, Confidence: 0.3}, Style: StyleScore{Primary: Formal, Confidence: 1.5}, Intensity: IntensityHigh},
	})
	if got.Emotional.Primary != Happy || math.Abs(got.Emotional.Confidence-0.75) > 1e-9 {
		t.Fatalf("Emotional=%+v", got.Emotional)
	}
	if got.Style.Primary != Formal || math.Abs(got.Style.Confidence-0.75) > 1e-9 {
		t.Fatalf("Style=%+v", got.Style)
	}
	if got.Intensity != IntensityMedium {
		t.Fatalf("Intensity=%s", got.Intensity)
	}
	if got.EmphasizedWords == nil || len(got.EmphasizedWords) != 0 {
		t.Fatalf("EmphasizedWords=%v", got.EmphasizedWords)
	}
}

func TestAggregateTones_TieGoesToFirstSeen(t *testing.T) {
	t.Parallel()

	got := AggregateTones([]ToneAnalysis{
		{Emotional: EmotionalScore{Primary: Sad, Confidence: 0.5}, Style: StyleScore{Primary: Urgent, Confidence: 0.5}, Intensity: IntensityHigh},
		{Emotional: EmotionalScore{Primary: Happy, Confidence: 0.5}, Style: StyleScore{Primary: Casual, Confidence: 0.5}, Intensity: IntensityHigh},
	})
	if got.Emotional.Primary != Sad || got.Style.Primary != Urgent {
		t.Fatalf("got %s/%s", got.Emotional.Primary, got.Style.Primary)
	}
	if got.Emotional.Confidence != 0.5 {
		t.Fatalf("Confidence=%v", got.Emotional.Confidence)
	}
	if got.Intensity != IntensityHigh {
		t.Fatalf("Intensity=%s", got.Intensity)
	}
}

func TestAggregateTones_ZeroWeight(t *testing.T) {
	t.Parallel()

	got := AggregateTones([]ToneAnalysis{
		{Emotional: EmotionalScore{Primary: Angry}, Style: StyleScore{Primary: Formal}, Intensity: IntensityLow},
		{Emotional: EmotionalScore{Primary: Happy}, Style: StyleScore{Primary: Casual}, Intensity: IntensityLow},
	})
	if got.Emotional.Primary != Angry || got.Emotional.Confidence != 0 {
		t.Fatalf("Emotional=%+v", got.Emotional)
	}
	if got.Intensity != IntensityLow {
		t.Fatalf("Intensity=%s", got.Intensity)
	}
}
