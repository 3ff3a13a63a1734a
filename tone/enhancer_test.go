package tone

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClassifier answers from replies, failing with err when set or when the sentence is in failOn.
type fakeClassifier struct {
	replies map[string]ToneAnalysis
	failOn  map[string]bool
	err     error
	calls   atomic.Int32
}

func (f *fakeClassifier) Classify(_ context.Context, sentence, _ string) (ToneAnalysis, error) {
	f.calls.Add(1)
	if f.err != nil {
		return ToneAnalysis{}, f.err
	}
	if f.failOn[sentence] {
		return ToneAnalysis{}, &RemoteError{Kind: KindProtocol, Err: errors.New("bad reply")}
	}
	if a, ok := f.replies[sentence]; ok {
		return a, nil
	}
	return DefaultTone(), nil
}

func angryAt(words ...string) ToneAnalysis {
	return ToneAnalysis{
		Emotional:       EmotionalScore{Primary: Angry, Confidence: 0.9},
		Style:           StyleScore{Primary: Casual, Confidence: 0.6},
		Intensity:       IntensityMedium,
		EmphasizedWords: words,
	}
}

func TestEnhance_EmptyInput(t *testing.T) {
	t.Parallel()

	e := NewEnhancer()
	for _, in := range []string{"", "   "} {
		got, err := e.Enhance(context.Background(), in, "", DefaultSettings())
		require.NoError(t, err)
		require.Equal(t, in, got.Original)
		require.Equal(t, in, got.Enhanced)
		require.NotNil(t, got.Sentences)
		require.Empty(t, got.Sentences)
		require.Equal(t, DefaultTone(), got.OverallTone)
	}
}

func TestEnhance_StylesAndDecoratesPerSentence(t *testing.T) {
	t.Parallel()

	remote := &fakeClassifier{replies: map[string]ToneAnalysis{
		"I can't believe you did that.": angryAt("you"),
	}}
	e := NewEnhancer(WithRemote(remote))

	got, err := e.Enhance(context.Background(), "I can't believe you did that.", "sk-test", DefaultSettings())
	require.NoError(t, err)
	require.Len(t, got.Sentences, 1)

	want := "I can't believe " + ConvertToUnicode("you", StyleBold) + " did that. 😤🔥"
	require.Equal(t, want, got.Enhanced)
	require.Equal(t, want, got.Sentences[0].Enhanced)
	require.Equal(t, "I can't believe you did that.", got.Sentences[0].Original)
	require.Equal(t, angryAt("you"), got.OverallTone)
	require.EqualValues(t, 1, remote.calls.Load())
}

func TestEnhance_SettingsToggles(t *testing.T) {
	t.Parallel()

	remote := &fakeClassifier{replies: map[string]ToneAnalysis{"You did it.": angryAt("you")}}
	e := NewEnhancer(WithRemote(remote))

	settings := DefaultSettings()
	settings.EnableStyling = false
	got, err := e.Enhance(context.Background(), "You did it.", "sk-test", settings)
	require.NoError(t, err)
	require.Equal(t, "You did it. 😤🔥", got.Enhanced)

	settings = DefaultSettings()
	settings.EnableEmojis = false
	got, err = e.Enhance(context.Background(), "You did it.", "sk-test", settings)
	require.NoError(t, err)
	require.Equal(t, ConvertToUnicode("You", StyleBold)+" did it.", got.Enhanced)

	settings.EnableStyling = false
	got, err = e.Enhance(context.Background(), "You did it.", "sk-test", settings)
	require.NoError(t, err)
	require.Equal(t, "You did it.", got.Enhanced)
}

func TestEnhance_EndOfMessagePlacement(t *testing.T) {
	t.Parallel()

	settings := DefaultSettings()
	settings.EmojiPlacement = EndOfMessage
	settings.EmojiIntensity = IntensityHigh

	got, err := NewEnhancer().EnhanceOffline("I am so happy. I love this.", settings)
	require.NoError(t, err)
	require.Len(t, got.Sentences, 2)
	for _, s := range got.Sentences {
		require.Equal(t, s.Original, s.Enhanced)
	}
	require.Equal(t, Happy, got.OverallTone.Emotional.Primary)
	require.Equal(t, "I am so happy. I love this. 😊🎉✨", got.Enhanced)
}

func TestEnhance_AggregatesOverallTone(t *testing.T) {
	t.Parallel()

	remote := &fakeClassifier{replies: map[string]ToneAnalysis{
		"Great news!": {Emotional: EmotionalScore{Primary: Happy, Confidence: 0.9}, Style: StyleScore{Primary: Casual, Confidence: 0.5}, Intensity: IntensityLow, EmphasizedWords: []string{}},
		"Bad news.":   {Emotional: EmotionalScore{Primary: Sad, Confidence: 0.3}, Style: StyleScore{Primary: Casual, Confidence: 0.5}, Intensity: IntensityHigh, EmphasizedWords: []string{}},
	}}
	got, err := NewEnhancer(WithRemote(remote)).Enhance(context.Background(), "Great news! Bad news.", "sk-test", DefaultSettings())
	require.NoError(t, err)
	require.Equal(t, Happy, got.OverallTone.Emotional.Primary)
	require.InDelta(t, 0.75, got.OverallTone.Emotional.Confidence, 1e-9)
	require.Equal(t, IntensityMedium, got.OverallTone.Intensity)
}

func TestEnhance_NoCredentialStaysOffline(t *testing.T) {
	t.Parallel()

	remote := &fakeClassifier{}
	e := NewEnhancer(WithRemote(remote))

	text := "I HATE THIS SO MUCH. Whatever... See you now!!"
	got, err := e.Enhance(context.Background(), text, "", DefaultSettings())
	require.NoError(t, err)
	require.EqualValues(t, 0, remote.calls.Load())

	offline, err := e.EnhanceOffline(text, DefaultSettings())
	require.NoError(t, err)
	require.Equal(t, offline, got)
}

func TestEnhance_RemoteFailureMatchesOffline(t *testing.T) {
	t.Parallel()

	srv, hits, _ := newCompletionServer(t, http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`)

	var buf bytes.Buffer
	e := NewEnhancer(
		WithRemote(newTestRemote(srv, time.Second)),
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
	)

	text := "I am so happy today! This is ridiculous. Maybe tomorrow?"
	ctx := WithRequestID(context.Background(), "req-1")
	got, err := e.Enhance(ctx, text, "sk-test", DefaultSettings())
	require.NoError(t, err)

	offline, err := e.EnhanceOffline(text, DefaultSettings())
	require.NoError(t, err)
	require.Equal(t, offline, got)
	require.EqualValues(t, 3, hits.Load())

	logs := buf.String()
	require.Equal(t, 3, strings.Count(logs, "level=WARN"))
	require.Contains(t, logs, "request_id=req-1")
	require.Contains(t, logs, "error_kind=server_error")
}

func TestEnhance_PartialFailureFallsBackPerSentence(t *testing.T) {
	t.Parallel()

	remote := &fakeClassifier{
		replies: map[string]ToneAnalysis{"You did it.": angryAt("you")},
		failOn:  map[string]bool{"I miss you.": true},
	}
	got, err := NewEnhancer(WithRemote(remote)).Enhance(context.Background(), "You did it. I miss you.", "sk-test", DefaultSettings())
	require.NoError(t, err)
	require.Len(t, got.Sentences, 2)
	require.Equal(t, Angry, got.Sentences[0].Tone.Emotional.Primary)
	require.Equal(t, DetectToneOffline("I miss you."), got.Sentences[1].Tone)
}

func TestEnhance_KeepsSentenceOrder(t *testing.T) {
	t.Parallel()

	replies := map[string]ToneAnalysis{}
	var parts []string
	for i := 0; i < 12; i++ {
		s := fmt.Sprintf("Sentence %d.", i)
		parts = append(parts, s)
		replies[s] = DefaultTone()
	}
	e := NewEnhancer(WithRemote(&fakeClassifier{replies: replies}), WithConcurrency(3))

	settings := DefaultSettings()
	settings.EnableEmojis = false
	got, err := e.Enhance(context.Background(), strings.Join(parts, " "), "sk-test", settings)
	require.NoError(t, err)
	require.Len(t, got.Sentences, len(parts))
	for i, s := range got.Sentences {
		require.Equal(t, parts[i], s.Original)
	}
	require.Equal(t, strings.Join(parts, " "), got.Enhanced)
}

func TestEnhance_InvalidSettings(t *testing.T) {
	t.Parallel()

	settings := DefaultSettings()
	settings.EmojiIntensity = "extreme"
	_, err := NewEnhancer().Enhance(context.Background(), "hi", "", settings)
	require.Error(t, err)

	settings = DefaultSettings()
	settings.EmojiPlacement = "start"
	_, err = NewEnhancer().EnhanceOffline("hi", settings)
	require.Error(t, err)
}

func TestEnhance_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEnhancer(WithRemote(&fakeClassifier{})).Enhance(ctx, "Hello there.", "sk-test", DefaultSettings())
	require.ErrorIs(t, err, context.Canceled)
}

func TestPreview(t *testing.T) {
	t.Parallel()

	got, err := NewEnhancer().Preview("OMG this is amazing!!!", DefaultSettings())
	require.NoError(t, err)
	require.Equal(t, Excited, got.Tone)
	require.Equal(t, "OMG this is amazing!!! 🚀⚡", got.Enhanced)
}
