package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/theimaginaryfoundation/tonetype/tone"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeCompletions serves chat completions whose content is reply, counting hits and recording
// the last Authorization header.
func fakeCompletions(t *testing.T, status int, reply string) (*httptest.Server, *atomic.Int32, *atomic.Value) {
	t.Helper()

	var hits atomic.Int32
	var auth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		auth.Store(r.Header.Get("Authorization"))
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
			return
		}
		body, _ := json.Marshal(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 0,
			"model":   tone.DefaultModel,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
		})
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits, &auth
}

func testServer(baseURL, apiKey string, logs io.Writer) http.Handler {
	cfg := defaultConfig()
	cfg.BaseURL = baseURL
	cfg.APIKey = apiKey
	return newServer(cfg, slog.New(slog.NewTextHandler(logs, nil))).routes()
}

func do(h http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	w := do(testServer("", "", io.Discard), http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	require.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestEnhance_BearerTokenUsesRemote(t *testing.T) {
	t.Parallel()

	reply := `{"emotional":{"primary":"angry","confidence":0.9},"style":{"primary":"casual","confidence":0.7},"intensity":"high","emphasizedWords":["you"]}`
	srv, hits, auth := fakeCompletions(t, http.StatusOK, reply)
	h := testServer(srv.URL+"/v1/", "sk-server", io.Discard)

	w := do(h, http.MethodPost, "/v1/enhance", `{"text":"I can't believe you did that."}`, http.Header{
		"Authorization": {"Bearer sk-caller"},
		requestIDHeader: {"req-42"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp enhanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "req-42", resp.RequestID)
	require.Equal(t, "I can't believe "+tone.ConvertToUnicode("you", tone.StyleBold)+" did that. 😤🔥", resp.Enhanced)
	require.Equal(t, tone.Angry, resp.OverallTone.Emotional.Primary)
	require.EqualValues(t, 1, hits.Load())
	require.Equal(t, "Bearer sk-caller", auth.Load())
}

func TestEnhance_ServerKeyAndFallback(t *testing.T) {
	t.Parallel()

	srv, hits, auth := fakeCompletions(t, http.StatusInternalServerError, "")
	var logs bytes.Buffer
	h := testServer(srv.URL+"/v1/", "sk-server", &logs)

	w := do(h, http.MethodPost, "/v1/enhance", `{"text":"I am so happy today."}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp enhanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.RequestID)
	require.Equal(t, "I am so happy today. 😊🎉", resp.Enhanced)
	require.EqualValues(t, 1, hits.Load())
	require.Equal(t, "Bearer sk-server", auth.Load())
	require.Contains(t, logs.String(), "request_id="+resp.RequestID)
	require.Contains(t, logs.String(), "error_kind=server_error")
}

func TestEnhance_NoKeyStaysOffline(t *testing.T) {
	t.Parallel()

	srv, hits, _ := fakeCompletions(t, http.StatusOK, "{}")
	h := testServer(srv.URL+"/v1/", "", io.Discard)

	w := do(h, http.MethodPost, "/v1/enhance", `{"text":"I miss you.","settings":{"emoji_intensity":"low"}}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp enhanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "I miss you. 😢", resp.Enhanced)
	require.EqualValues(t, 0, hits.Load())
}

func TestEnhance_EmptyText(t *testing.T) {
	t.Parallel()

	w := do(testServer("", "", io.Discard), http.MethodPost, "/v1/enhance", `{"text":""}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp enhanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "", resp.Enhanced)
	require.Empty(t, resp.Sentences)
	require.Equal(t, tone.DefaultTone(), resp.OverallTone)
}

func TestEnhance_BadRequests(t *testing.T) {
	t.Parallel()

	h := testServer("", "", io.Discard)
	for _, body := range []string{
		`{"text":`,
		`not json`,
		`{"text":"hi","settings":{"emoji_intensity":"loud"}}`,
		`{"text":"hi","settings":{"emoji_placement":"start"}}`,
	} {
		w := do(h, http.MethodPost, "/v1/enhance", body, nil)
		require.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()

	srv, hits, _ := fakeCompletions(t, http.StatusOK, "{}")
	h := testServer(srv.URL+"/v1/", "sk-server", io.Discard)

	w := do(h, http.MethodPost, "/v1/preview", `{"text":"OMG this is amazing!!!","settings":{"emoji_intensity":"high"}}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.JSONEq(t, `{"enhanced":"OMG this is amazing!!! 🚀⚡🎊","tone":"excited"}`, w.Body.String())
	require.EqualValues(t, 0, hits.Load())
}

func TestStyles(t *testing.T) {
	t.Parallel()

	w := do(testServer("", "", io.Discard), http.MethodGet, "/v1/styles?text=Hey", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, len(tone.UnicodeStyles))
	require.Equal(t, "Hey", got["normal"])
	require.Equal(t, "ʜᴇʏ", got["small_caps"])
}

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{"-addr", ":9090", "-log-level", "DEBUG"})
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, tone.DefaultSettings(), cfg.Settings)
	require.NoError(t, cfg.Validate())

	cfg.MaxBodyBytes = 0
	require.Error(t, cfg.Validate())
}
