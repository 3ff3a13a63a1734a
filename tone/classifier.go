package tone

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/theimaginaryfoundation/tonetype/tone/provider"
)

// Classifier produces a ToneAnalysis for one sentence. Credential is an opaque API key;
// strategies that need none ignore it.
type Classifier interface {
	Classify(ctx context.Context, sentence, credential string) (ToneAnalysis, error)
}

var (
	// ErrMissingCredential is returned by the remote classifier when called without a key.
	ErrMissingCredential = errors.New("API key is required for remote tone classification")

	// ErrRemoteClassification matches every recoverable remote failure (transport or protocol).
	ErrRemoteClassification = errors.New("remote tone classification failed")
)

// KindProtocol marks replies that arrived but could not be used.
const KindProtocol = "protocol"

// RemoteError is a recoverable remote classification failure.
type RemoteError struct {
	Kind string
	Err  error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote tone classification (%s): %v", e.Kind, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool { return target == ErrRemoteClassification }

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "gpt-4o-mini"

const (
	remoteTemperature = 0.3
	remoteMaxTokens   = 150
)

// RemoteOptions configure a RemoteClassifier.
type RemoteOptions struct {
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// RemoteClassifier asks a hosted chat-completion model for the tone of a sentence.
// It is safe for concurrent use; the credential travels with each call.
type RemoteClassifier struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewRemoteClassifier(opts RemoteOptions) *RemoteClassifier {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = provider.DefaultTimeout
	}
	return &RemoteClassifier{
		client: provider.NewClient(provider.ClientOptions{
			BaseURL:    opts.BaseURL,
			Timeout:    timeout,
			HTTPClient: opts.HTTPClient,
		}),
		model:   model,
		timeout: timeout,
	}
}

// Classify sends one request. Empty sentences short-circuit to DefaultTone. Every transport
// and protocol failure comes back as a *RemoteError; a missing credential is ErrMissingCredential.
func (c *RemoteClassifier) Classify(ctx context.Context, sentence, credential string) (ToneAnalysis, error) {
	if strings.TrimSpace(sentence) == "" {
		return DefaultTone(), nil
	}
	if strings.TrimSpace(credential) == "" {
		return ToneAnalysis{}, ErrMissingCredential
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	content, err := provider.Complete(ctx, c.client, c.request(sentence), credential)
	if err != nil {
		if errors.Is(err, provider.ErrEmptyReply) {
			return ToneAnalysis{}, &RemoteError{Kind: KindProtocol, Err: err}
		}
		return ToneAnalysis{}, &RemoteError{Kind: provider.ErrorKind(err), Err: err}
	}
	analysis, err := ParseToneReply(content)
	if err != nil {
		return ToneAnalysis{}, &RemoteError{Kind: KindProtocol, Err: err}
	}
	return analysis, nil
}

func (c *RemoteClassifier) request(sentence string) provider.ChatRequest {
	return provider.ChatRequest{
		Model:       c.model,
		System:      toneSystemPrompt,
		User:        strings.Replace(toneUserPrompt, messagePlaceholder, sentence, 1),
		Temperature: remoteTemperature,
		MaxTokens:   remoteMaxTokens,
		SchemaName:  "ToneAnalysis",
		Schema:      toneReplySchema,
	}
}

// FallbackClassifier tries Primary and answers with the offline rules whenever Primary fails
// with a recoverable error or no credential is supplied.
type FallbackClassifier struct {
	Primary Classifier
	Logger  *slog.Logger
}

func (f FallbackClassifier) Classify(ctx context.Context, sentence, credential string) (ToneAnalysis, error) {
	if f.Primary == nil || strings.TrimSpace(credential) == "" {
		return DetectToneOffline(sentence), nil
	}
	analysis, err := f.Primary.Classify(ctx, sentence, credential)
	if err == nil {
		return analysis, nil
	}
	if ctx.Err() != nil {
		// The caller abandoned the call; the offline answer is still well defined.
		return DetectToneOffline(sentence), nil
	}
	logger := f.Logger
	if logger == nil {
		logger = discardLogger
	}
	logger.LogAttrs(ctx, slog.LevelWarn, "remote tone classification failed; using offline rules",
		slog.String("sentence", previewText(sentence)),
		slog.String("error_kind", errorKind(err)),
		slog.String("error", err.Error()),
	)
	return DetectToneOffline(sentence), nil
}

func errorKind(err error) string {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Kind
	}
	return provider.ErrorKind(err)
}
