package tone

// AggregateTones folds per-sentence analyses into one message-level tone.
//
// No analyses yields DefaultTone and a single analysis is returned unchanged. Otherwise each
// axis is a confidence-weighted vote: the winning value's confidence is its share of the total
// weight, and ties go to the value seen first. Intensity is the mean of low=1, medium=2, high=3
// mapped back with cutoffs at 1.5 and 2.5. The aggregate carries no emphasized words.
func AggregateTones(tones []ToneAnalysis) ToneAnalysis {
	switch len(tones) {
	case 0:
		return DefaultTone()
	case 1:
		return tones[0]
	}

	emotional := newVote[EmotionalTone]()
	style := newVote[StyleTone]()
	levels := 0.0
	for _, t := range tones {
		emotional.add(t.Emotional.Primary, t.Emotional.Confidence)
		style.add(t.Style.Primary, t.Style.Confidence)
		levels += t.Intensity.level()
	}

	emotionalPrimary, emotionalShare := emotional.winner()
	stylePrimary, styleShare := style.winner()

	return ToneAnalysis{
		Emotional:       EmotionalScore{Primary: emotionalPrimary, Confidence: emotionalShare},
		Style:           StyleScore{Primary: stylePrimary, Confidence: styleShare},
		Intensity:       intensityFromLevel(levels / float64(len(tones))),
		EmphasizedWords: []string{},
	}
}

func intensityFromLevel(avg float64) Intensity {
	switch {
	case avg < 1.5:
		return IntensityLow
	case avg < 2.5:
		return IntensityMedium
	default:
		return IntensityHigh
	}
}

type vote[K comparable] struct {
	order  []K
	weight map[K]float64
	total  float64
}

func newVote[K comparable]() *vote[K] {
	return &vote[K]{weight: map[K]float64{}}
}

func (v *vote[K]) add(k K, w float64) {
	if _, seen := v.weight[k]; !seen {
		v.order = append(v.order, k)
	}
	v.weight[k] += w
	v.total += w
}

// winner returns the heaviest key and its share of the total. A zero total yields share 0.
func (v *vote[K]) winner() (K, float64) {
	var best K
	bestWeight := -1.0
	for _, k := range v.order {
		if v.weight[k] > bestWeight {
			best, bestWeight = k, v.weight[k]
		}
	}
	if v.total <= 0 {
		return best, 0
	}
	return best, bestWeight / v.total
}
