package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultTimeout bounds one classification request. A request that runs longer is a failure.
const DefaultTimeout = 10 * time.Second

// Error kinds reported by ErrorKind.
const (
	KindRateLimited = "rate_limited"
	KindServerError = "server_error"
	KindClientError = "client_error"
	KindTimeout     = "timeout"
	KindTransport   = "transport"
)

// ErrEmptyReply is returned when a completion carries no choices or empty content.
var ErrEmptyReply = errors.New("chat completion returned no content")

// ClientOptions configure an OpenAI-compatible chat-completion client.
type ClientOptions struct {
	// BaseURL overrides the API root (e.g. an OpenAI-compatible gateway). Empty uses the SDK default.
	BaseURL string

	// Timeout bounds each request; zero means DefaultTimeout.
	Timeout time.Duration

	HTTPClient *http.Client
}

// NewClient builds a client that makes exactly one attempt per request. The API key is not bound
// here; callers pass it per request to Complete.
func NewClient(opts ClientOptions) *openai.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	reqOpts := []option.RequestOption{
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}
	client := openai.NewClient(reqOpts...)
	return &client
}

// ChatRequest is a two-message (system + user) chat completion with an optional strict schema.
type ChatRequest struct {
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int64

	SchemaName string
	Schema     map[string]interface{}
}

// Params converts the request into SDK parameters.
func (r ChatRequest) Params() openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(r.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(r.System),
			openai.UserMessage(r.User),
		},
		Temperature: openai.Float(r.Temperature),
		MaxTokens:   openai.Int(r.MaxTokens),
	}
	if r.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   r.SchemaName,
					Schema: r.Schema,
					Strict: openai.Bool(true),
				},
			},
		}
	}
	return params
}

// Complete sends one chat completion and returns the first choice's message content.
// There is no retry: any failure is returned to the caller.
func Complete(ctx context.Context, client *openai.Client, req ChatRequest, apiKey string) (string, error) {
	if client == nil {
		return "", errors.New("provider: client is nil")
	}
	resp, err := client.Chat.Completions.New(ctx, req.Params(), option.WithAPIKey(apiKey))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyReply
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyReply
	}
	return content, nil
}

// ErrorKind buckets a Complete error for logging.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return KindRateLimited
		case apiErr.StatusCode >= 500:
			return KindServerError
		default:
			return KindClientError
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if isRateLimitError(err) {
		return KindRateLimited
	}
	if isServerError(err) {
		return KindServerError
	}
	return KindTransport
}

func isRateLimitError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}

// GenerateSchema reflects T into a JSON schema accepted by strict structured outputs.
func GenerateSchema[T any]() map[string]interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	schemaObj, err := schemaToMap(schema)
	if err != nil {
		panic(err)
	}
	ensureStrictCompliance(schemaObj)
	return schemaObj
}

func schemaToMap(schema *jsonschema.Schema) (map[string]interface{}, error) {
	b, err := schema.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

const (
	propertiesKey           = "properties"
	additionalPropertiesKey = "additionalProperties"
	typeKey                 = "type"
	requiredKey             = "required"
	itemsKey                = "items"
)

// ensureStrictCompliance marks every object closed and every property required, recursively.
func ensureStrictCompliance(schema map[string]interface{}) {
	if schemaType, ok := schema[typeKey].(string); ok && schemaType == "object" {
		schema[additionalPropertiesKey] = false

		if properties, ok := schema[propertiesKey].(map[string]interface{}); ok {
			var requiredFields []string
			for propName := range properties {
				requiredFields = append(requiredFields, propName)
			}
			sort.Strings(requiredFields)
			if len(requiredFields) > 0 {
				schema[requiredKey] = requiredFields
			}
		}
	}

	if properties, ok := schema[propertiesKey].(map[string]interface{}); ok {
		for _, prop := range properties {
			if propMap, ok := prop.(map[string]interface{}); ok {
				ensureStrictCompliance(propMap)
			}
		}
	}

	if items, ok := schema[itemsKey].(map[string]interface{}); ok {
		ensureStrictCompliance(items)
	}

	if additionalProps, ok := schema[additionalPropertiesKey].(map[string]interface{}); ok {
		ensureStrictCompliance(additionalProps)
	}
}
