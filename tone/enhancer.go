package tone

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/theimaginaryfoundation/tonetype/tone/fileutils"
)

// DefaultConcurrency bounds how many sentences are classified remotely at once.
const DefaultConcurrency = 4

var discardLogger = slog.New(slog.DiscardHandler)

// Enhancer runs the tone pipeline: split, classify each sentence, style emphasized words,
// append emoji, aggregate an overall tone. It holds no per-call state and is safe for
// concurrent use.
type Enhancer struct {
	remote      Classifier
	logger      *slog.Logger
	concurrency int
}

type Option func(*Enhancer)

// WithRemote sets the classifier used when a credential is supplied. Without it, Enhance
// classifies offline even when given a credential.
func WithRemote(c Classifier) Option {
	return func(e *Enhancer) { e.remote = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Enhancer) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithConcurrency bounds parallel remote classification; values below 1 mean sequential.
func WithConcurrency(n int) Option {
	return func(e *Enhancer) { e.concurrency = n }
}

func NewEnhancer(opts ...Option) *Enhancer {
	e := &Enhancer{
		logger:      discardLogger,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.concurrency < 1 {
		e.concurrency = 1
	}
	return e
}

// Enhance classifies each sentence remotely when credential is non-empty and a remote
// classifier is configured, falling back to the offline rules on any remote failure.
// Remote errors are logged, never returned. The only errors are invalid settings and
// cancellation of ctx.
func (e *Enhancer) Enhance(ctx context.Context, text, credential string, settings Settings) (EnhancedMessage, error) {
	log := e.logger.With(slog.String("request_id", requestID(ctx)))
	classifier := FallbackClassifier{Primary: e.remote, Logger: log}
	return e.run(ctx, text, settings, log, func(ctx context.Context, sentences []string) []ToneAnalysis {
		if e.remote == nil || strings.TrimSpace(credential) == "" {
			return classifyOffline(sentences)
		}
		return e.classifyConcurrently(ctx, classifier, sentences, credential)
	})
}

// EnhanceOffline is the low-latency live-preview variant: the same pipeline, always using the
// offline classifier and never touching the network.
func (e *Enhancer) EnhanceOffline(text string, settings Settings) (EnhancedMessage, error) {
	return e.run(context.Background(), text, settings, e.logger, func(_ context.Context, sentences []string) []ToneAnalysis {
		return classifyOffline(sentences)
	})
}

// Preview runs EnhanceOffline and reduces the result to the enhanced text and tone label.
func (e *Enhancer) Preview(text string, settings Settings) (PreviewResult, error) {
	msg, err := e.EnhanceOffline(text, settings)
	if err != nil {
		return PreviewResult{}, err
	}
	return msg.Preview(), nil
}

type requestIDKey struct{}

// WithRequestID attaches the ID Enhance logs under request_id. Without one, Enhance generates
// a fresh UUID per call.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

type classifyFunc func(ctx context.Context, sentences []string) []ToneAnalysis

func (e *Enhancer) run(ctx context.Context, text string, settings Settings, log *slog.Logger, classify classifyFunc) (EnhancedMessage, error) {
	if err := settings.Validate(); err != nil {
		return EnhancedMessage{}, err
	}
	if strings.TrimSpace(text) == "" {
		return EnhancedMessage{
			Original:    text,
			Enhanced:    text,
			Sentences:   []AnalyzedSentence{},
			OverallTone: DefaultTone(),
		}, nil
	}

	sentences := SplitIntoSentences(text)
	tones := classify(ctx, sentences)
	if err := ctx.Err(); err != nil {
		return EnhancedMessage{}, err
	}

	analyzed := make([]AnalyzedSentence, len(sentences))
	parts := make([]string, len(sentences))
	for i, sentence := range sentences {
		var emojis string
		analyzed[i], emojis = renderSentence(sentence, tones[i], settings)
		parts[i] = analyzed[i].Enhanced
		log.LogAttrs(ctx, slog.LevelDebug, "sentence enhanced",
			slog.Int("index", i),
			slog.String("emotional", string(tones[i].Emotional.Primary)),
			slog.String("style", string(tones[i].Style.Primary)),
			slog.Int("emphasized", len(tones[i].EmphasizedWords)),
			slog.Int("emoji", EmojiCount(emojis)),
		)
	}

	overall := AggregateTones(tones)
	enhanced := strings.Join(parts, " ")
	if settings.EnableEmojis && settings.EmojiPlacement == EndOfMessage {
		if emojis := EmojisFor(overall.Emotional.Primary, overall.Style.Primary, settings.EmojiIntensity); emojis != "" {
			enhanced += " " + emojis
		}
	}

	return EnhancedMessage{
		Original:    text,
		Enhanced:    strings.TrimSpace(enhanced),
		Sentences:   analyzed,
		OverallTone: overall,
	}, nil
}

// renderSentence styles and decorates one sentence, returning the emoji it appended.
func renderSentence(sentence string, analysis ToneAnalysis, settings Settings) (AnalyzedSentence, string) {
	enhanced := sentence
	if settings.EnableStyling && len(analysis.EmphasizedWords) > 0 {
		enhanced = ConvertEmphasizedWords(sentence, analysis.Emotional.Primary, analysis.EmphasizedWords)
	}
	var emojis string
	if settings.EnableEmojis && settings.EmojiPlacement == EndOfSentence {
		emojis = EmojisFor(analysis.Emotional.Primary, analysis.Style.Primary, settings.EmojiIntensity)
		if emojis != "" {
			enhanced += " " + emojis
		}
	}
	return AnalyzedSentence{Original: sentence, Tone: analysis, Enhanced: enhanced}, emojis
}

func classifyOffline(sentences []string) []ToneAnalysis {
	out := make([]ToneAnalysis, len(sentences))
	for i, s := range sentences {
		out[i] = DetectToneOffline(s)
	}
	return out
}

// classifyConcurrently classifies sentences in parallel, at most e.concurrency in flight.
// Results keep input order.
func (e *Enhancer) classifyConcurrently(ctx context.Context, c Classifier, sentences []string, credential string) []ToneAnalysis {
	out := make([]ToneAnalysis, len(sentences))
	sem := make(chan struct{}, e.concurrency)
	wg := sync.WaitGroup{}
	for i, sentence := range sentences {
		wg.Add(1)
		go func(i int, sentence string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			select {
			case <-ctx.Done():
				out[i] = DetectToneOffline(sentence)
				return
			default:
			}

			analysis, err := c.Classify(ctx, sentence, credential)
			if err != nil {
				analysis = DetectToneOffline(sentence)
			}
			out[i] = analysis
		}(i, sentence)
	}
	wg.Wait()
	return out
}

func previewText(s string) string {
	return fileutils.SanitizeNewlines(fileutils.Truncate(s, 80))
}
