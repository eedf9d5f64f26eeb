package lexia

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// newStubClient returns a client whose transport answers every request with fn.
func newStubClient(t *testing.T, fn roundTripFunc, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithHTTPClient(&http.Client{Transport: fn})}, opts...)
	client, err := NewClient(Config{TenantURL: "https://api.test/", APIKey: "lx-abc"}, zerolog.Nop(), opts...)
	require.NoError(t, err)
	return client
}

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{TenantURL: server.URL, APIKey: "test-key"}, zerolog.Nop())
	require.NoError(t, err)
	return client, server
}

func TestNewClient(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			cfg:  Config{TenantURL: "https://api.cloud.lexia.la", APIKey: "lx-abc"},
		},
		{
			name:    "missing URL",
			cfg:     Config{APIKey: "lx-abc"},
			wantErr: true,
			errMsg:  "tenant URL is required",
		},
		{
			name:    "missing API key",
			cfg:     Config{TenantURL: "https://api.cloud.lexia.la"},
			wantErr: true,
			errMsg:  "API key is required",
		},
		{
			name:    "missing both",
			cfg:     Config{},
			wantErr: true,
			errMsg:  "tenant URL is required",
		},
		{
			name:    "blank API key",
			cfg:     Config{TenantURL: "https://api.cloud.lexia.la", APIKey: "   "},
			wantErr: true,
			errMsg:  "API key is required",
		},
		{
			name:    "relative URL",
			cfg:     Config{TenantURL: "api.cloud.lexia.la", APIKey: "lx-abc"},
			wantErr: true,
			errMsg:  "invalid tenant URL",
		},
		{
			name:    "unsupported scheme",
			cfg:     Config{TenantURL: "ftp://api.cloud.lexia.la", APIKey: "lx-abc"},
			wantErr: true,
			errMsg:  "unsupported tenant URL scheme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg, logger)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, client)
				assert.ErrorIs(t, err, ErrConfiguration)
				assert.Contains(t, err.Error(), tt.errMsg)
				kind, ok := KindOf(err)
				assert.True(t, ok)
				assert.Equal(t, KindConfiguration, kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.TenantURL, client.BaseURL())
			assert.Equal(t, DefaultTimeout, client.Timeout())
		})
	}
}

func TestNewClient_NoNetworkOnConfigurationError(t *testing.T) {
	var calls atomic.Int32
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusOK, `{}`), nil
	})

	_, err := NewClient(Config{}, zerolog.Nop(), WithHTTPClient(&http.Client{Transport: transport}))
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Zero(t, calls.Load())
}

func TestNewClient_Options(t *testing.T) {
	t.Run("trims trailing slash", func(t *testing.T) {
		client, err := NewClient(Config{TenantURL: "https://api.test/", APIKey: "k"}, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, "https://api.test", client.BaseURL())
	})

	t.Run("config timeout", func(t *testing.T) {
		client, err := NewClient(Config{TenantURL: "https://api.test", APIKey: "k", Timeout: 5 * time.Second}, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, client.Timeout())
	})

	t.Run("with timeout overrides config", func(t *testing.T) {
		client, err := NewClient(Config{TenantURL: "https://api.test", APIKey: "k", Timeout: 5 * time.Second}, zerolog.Nop(), WithTimeout(time.Second))
		require.NoError(t, err)
		assert.Equal(t, time.Second, client.Timeout())
	})

	t.Run("custom http client timeout untouched", func(t *testing.T) {
		custom := &http.Client{Timeout: 10 * time.Second}
		_, err := NewClient(Config{TenantURL: "https://api.test", APIKey: "k"}, zerolog.Nop(), WithHTTPClient(custom))
		require.NoError(t, err)
		assert.Equal(t, 10*time.Second, custom.Timeout)
	})

	t.Run("custom http client is not modified", func(t *testing.T) {
		jar, err := cookiejar.New(nil)
		require.NoError(t, err)
		custom := &http.Client{Jar: jar}

		_, err = NewClient(Config{TenantURL: "https://api.test", APIKey: "k"}, zerolog.Nop(), WithHTTPClient(custom))
		require.NoError(t, err)
		assert.Same(t, jar, custom.Jar)
		assert.Nil(t, custom.CheckRedirect)
	})
}

func TestDo_HealthScenario(t *testing.T) {
	var gotKey, gotURL string
	client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		gotKey = r.Header.Get(HeaderAPIKey)
		gotURL = r.URL.String()
		return jsonResponse(http.StatusOK, `{"status":"ok"}`), nil
	})

	result, err := client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/health"})
	require.NoError(t, err)
	assert.Equal(t, Object{"status": "ok"}, result)
	assert.Equal(t, "lx-abc", gotKey)
	assert.Equal(t, "https://api.test/health", gotURL)
}

func TestDo_SuccessBodiesPassThrough(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   Object
	}{
		{
			name:   "nested object",
			status: http.StatusOK,
			body:   `{"areas":[{"id":1,"nombre":"Finanzas"}],"total":1}`,
			want: Object{
				"areas": []any{map[string]any{"id": json.Number("1"), "nombre": "Finanzas"}},
				"total": json.Number("1"),
			},
		},
		{
			name:   "created",
			status: http.StatusCreated,
			body:   `{"success":true,"item":null}`,
			want:   Object{"success": true, "item": nil},
		},
		{
			name:   "large id keeps precision",
			status: http.StatusOK,
			body:   `{"id":9007199254740993}`,
			want:   Object{"id": json.Number("9007199254740993")},
		},
		{
			name:   "no content",
			status: http.StatusNoContent,
			body:   ``,
			want:   Object{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
				return jsonResponse(tt.status, tt.body), nil
			})
			result, err := client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result)
		})
	}
}

func TestDo_MalformedSuccessBody(t *testing.T) {
	bodies := map[string]string{
		"truncated":     `{"status":`,
		"array":         `[1,2,3]`,
		"null":          `null`,
		"html":          `<html>oops</html>`,
		"trailing data": `{"a":1} {"b":2}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, body), nil
			})
			result, err := client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, ErrAPI)

			lexiaErr, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, KindAPI, lexiaErr.Kind)
			assert.Equal(t, []byte(body), lexiaErr.RawBody)
		})
	}
}

func TestDo_StatusMapping(t *testing.T) {
	tests := []struct {
		status   int
		kind     Kind
		sentinel error
	}{
		{http.StatusBadRequest, KindValidation, ErrValidation},
		{http.StatusUnauthorized, KindAuthentication, ErrAuthentication},
		{http.StatusForbidden, KindAuthentication, ErrAuthentication},
		{http.StatusNotFound, KindNotFound, ErrNotFound},
		{http.StatusConflict, KindAPI, ErrAPI},
		{http.StatusTeapot, KindAPI, ErrAPI},
		{http.StatusUnprocessableEntity, KindValidation, ErrValidation},
		{http.StatusTooManyRequests, KindRateLimit, ErrRateLimited},
		{http.StatusInternalServerError, KindService, ErrService},
		{http.StatusBadGateway, KindService, ErrService},
		{http.StatusServiceUnavailable, KindService, ErrService},
		{599, KindService, ErrService},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.kind, KindForStatus(tt.status))
			assert.Equal(t, KindForStatus(tt.status), KindForStatus(tt.status))

			client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
				return jsonResponse(tt.status, `{"error":"boom"}`), nil
			})
			_, err := client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			lexiaErr, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, lexiaErr.Kind)
			assert.Equal(t, tt.status, lexiaErr.StatusCode)
			assert.Equal(t, "boom", lexiaErr.Message)
		})
	}
}

func TestDo_ValidationScenario(t *testing.T) {
	client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/queue/items", r.URL.Path)
		return jsonResponse(http.StatusUnprocessableEntity, `{"detail":{"priority":"must be 0-2"}}`), nil
	})

	_, err := client.Do(context.Background(), &Request{
		Method: http.MethodPost,
		Path:   "/queue/items",
		Body:   map[string]any{"priority": 7},
	})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrValidation)

	lexiaErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"priority": "must be 0-2"}, lexiaErr.Detail)
	assert.Equal(t, Object{"detail": map[string]any{"priority": "must be 0-2"}}, lexiaErr.Body)
	assert.Equal(t, http.StatusText(http.StatusUnprocessableEntity), lexiaErr.Message)
}

func TestDo_NotFoundScenario(t *testing.T) {
	client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusNotFound, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(""))}, nil
	})

	_, err := client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/documents/999"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	lexiaErr, ok := AsError(err)
	require.True(t, ok)
	assert.True(t, lexiaErr.IsNotFound())
	assert.Equal(t, "Not Found", lexiaErr.Message)
	assert.Nil(t, lexiaErr.Body)
}

func TestDo_ErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error key", `{"error":"API key inválida"}`, "API key inválida"},
		{"error with string detail", `{"error":"Bad request","detail":"area_id missing"}`, "Bad request: area_id missing"},
		{"string detail only", `{"detail":"area_id missing"}`, "area_id missing"},
		{"message key", `{"message":"nope"}`, "nope"},
		{"plain text", `upstream exploded`, "upstream exploded"},
		{"empty", ``, "Bad Request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusBadRequest, tt.body), nil
			})
			_, err := client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
			lexiaErr, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, lexiaErr.Message)
		})
	}
}

func TestDo_RateLimitRetryAfter(t *testing.T) {
	client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		resp := jsonResponse(http.StatusTooManyRequests, `{"error":"slow down"}`)
		resp.Header.Set(HeaderRetryAfter, "12")
		return resp, nil
	})

	_, err := client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
	require.ErrorIs(t, err, ErrRateLimited)

	lexiaErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, 12*time.Second, lexiaErr.RetryAfter)
	assert.True(t, lexiaErr.IsTemporary())
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-3"))
	assert.Equal(t, 3*time.Second, parseRetryAfter(" 3 "))

	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	d := parseRetryAfter(future)
	assert.Greater(t, d, 58*time.Minute)
	assert.LessOrEqual(t, d, time.Hour)
}

func TestDo_AuthHeaderOnEveryRequestShape(t *testing.T) {
	var seen []string
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.Header.Get(HeaderAPIKey))
		assert.NotEmpty(t, r.Header.Get(HeaderRequestID))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	ctx := context.Background()
	requests := []*Request{
		{Method: http.MethodGet, Path: "/a", Query: map[string][]string{"page": {"1"}}},
		{Method: http.MethodPost, Path: "/b", Body: map[string]any{"x": 1}},
		{Method: http.MethodPut, Path: "/c", Body: map[string]any{"x": 1}},
		{Method: http.MethodPatch, Path: "/d", Body: map[string]any{"progress": 100}},
		{Method: http.MethodDelete, Path: "/e", Body: map[string]any{"ids": []int{1}}},
		{Method: http.MethodPost, Path: "/f", Form: map[string]string{"area_id": "1"}, Files: []File{{Field: "file", Name: "a.pdf", Content: strings.NewReader("pdf")}}},
	}
	for _, req := range requests {
		_, err := client.Do(ctx, req)
		require.NoError(t, err)
	}

	require.Len(t, seen, len(requests))
	for _, s := range seen {
		assert.True(t, strings.HasSuffix(s, " test-key"), s)
	}
}

func TestDo_JSONEncoding(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, ContentTypeJSON, r.Header.Get(HeaderContentType))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "cola", body["queue"])

		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	result, err := client.Do(context.Background(), &Request{
		Method: http.MethodPost,
		Path:   "/public/api/queues/add-item",
		Body:   map[string]any{"queue": "cola"},
	})
	require.NoError(t, err)
	assert.Equal(t, Object{"ok": true}, result)
}

func TestDo_MultipartEncoding(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get(HeaderContentType), "multipart/form-data"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "7", r.FormValue("area_id"))
		files := r.MultipartForm.File["archivos"]
		require.Len(t, files, 2)
		assert.Equal(t, "a.txt", files[0].Filename)
		assert.Equal(t, "b.txt", files[1].Filename)

		f, err := files[1].Open()
		require.NoError(t, err)
		defer f.Close()
		content, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "second", string(content))

		_, _ = w.Write([]byte(`{"uploaded":2}`))
	})

	result, err := client.Do(context.Background(), &Request{
		Method: http.MethodPost,
		Path:   "/upload",
		Form:   map[string]string{"area_id": "7"},
		Files: []File{
			{Field: "archivos", Name: "a.txt", Content: strings.NewReader("first")},
			{Field: "archivos", Name: "b.txt", Content: strings.NewReader("second")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, Object{"uploaded": json.Number("2")}, result)
}

func TestDo_RejectsInvalidRequestsLocally(t *testing.T) {
	var calls atomic.Int32
	client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusOK, `{}`), nil
	})

	tests := []struct {
		name string
		req  *Request
	}{
		{"nil request", nil},
		{"missing method", &Request{Path: "/x"}},
		{"missing path", &Request{Method: http.MethodGet}},
		{"body and files", &Request{Method: http.MethodPost, Path: "/x", Body: map[string]any{}, Files: []File{{Field: "f", Name: "a", Content: strings.NewReader("a")}}}},
		{"form without files", &Request{Method: http.MethodPost, Path: "/x", Form: map[string]string{"a": "b"}}},
		{"file without content", &Request{Method: http.MethodPost, Path: "/x", Files: []File{{Field: "f", Name: "a"}}}},
		{"file without field", &Request{Method: http.MethodPost, Path: "/x", Files: []File{{Name: "a", Content: strings.NewReader("a")}}}},
		{"unencodable body", &Request{Method: http.MethodPost, Path: "/x", Body: map[string]any{"f": func() {}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Do(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Zero(t, calls.Load())
}

func TestDo_PathWithoutLeadingSlash(t *testing.T) {
	var gotPath string
	client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		gotPath = r.URL.Path
		return jsonResponse(http.StatusOK, `{}`), nil
	})

	req := &Request{Method: http.MethodGet, Path: "public/api/areas"}
	_, err := client.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "/public/api/areas", gotPath)
	assert.Equal(t, "public/api/areas", req.Path, "request must not be modified")

	_, err = client.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "/public/api/areas", gotPath)
}

func TestDo_NoCookiesBetweenCalls(t *testing.T) {
	var calls atomic.Int32
	cookies := make(chan string, 2)
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		cookies <- r.Header.Get("Cookie")
		http.SetCookie(w, &http.Cookie{Name: "sess", Value: "abc", Path: "/"})
		_, _ = w.Write([]byte(`{}`))
	})

	for i := 0; i < 2; i++ {
		_, err := client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/public/api/areas"})
		require.NoError(t, err)
	}

	require.Equal(t, int32(2), calls.Load())
	assert.Empty(t, <-cookies)
	assert.Empty(t, <-cookies, "cookie from the first response must not be sent")
}

func TestDo_RedirectNotFollowed(t *testing.T) {
	var leaked atomic.Value
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		leaked.Store(r.Header.Get(HeaderAPIKey))
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	t.Cleanup(other.Close)

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, other.URL+"/collect", http.StatusFound)
	})

	_, err := client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/public/api/areas"})
	require.Error(t, err)

	lexiaErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindAPI, lexiaErr.Kind)
	assert.Equal(t, http.StatusFound, lexiaErr.StatusCode)
	assert.Contains(t, lexiaErr.Message, other.URL+"/collect")
	assert.Nil(t, leaked.Load(), "API key must not reach the redirect target")
}

func TestDoRaw(t *testing.T) {
	client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": {"application/pdf"}},
			Body:       io.NopCloser(strings.NewReader("%PDF-1.7")),
		}, nil
	})

	body, err := client.DoRaw(context.Background(), &Request{Method: http.MethodGet, Path: "/file"})
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), body)
}

func TestDo_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client, err := NewClient(Config{TenantURL: server.URL, APIKey: "k"}, zerolog.Nop(), WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	_, err = client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/slow"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorIs(t, err, ErrService)
	assert.NotErrorIs(t, err, ErrCanceled)
	assert.Contains(t, err.Error(), "timed out")
}

func TestDo_CallerCancellation(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client, err := NewClient(Config{TenantURL: server.URL, APIKey: "k"}, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err = client.Do(ctx, &Request{Method: http.MethodGet, Path: "/slow"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCanceled)
	assert.NotErrorIs(t, err, ErrService)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDo_AlreadyCanceledContext(t *testing.T) {
	client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		return nil, r.Context().Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Do(ctx, &Request{Method: http.MethodGet, Path: "/x"})
	assert.ErrorIs(t, err, ErrCanceled)
}

func TestDo_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewClient(Config{TenantURL: url, APIKey: "k"}, zerolog.Nop())
	require.NoError(t, err)

	_, err = client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrService)

	lexiaErr, ok := AsError(err)
	require.True(t, ok)
	assert.Zero(t, lexiaErr.StatusCode)
	assert.NotEmpty(t, lexiaErr.RequestID)
}

func TestDo_RequestIDFromResponse(t *testing.T) {
	client := newStubClient(t, func(r *http.Request) (*http.Response, error) {
		resp := jsonResponse(http.StatusInternalServerError, `{"error":"db down"}`)
		resp.Header.Set(HeaderRequestID, "srv-123")
		return resp, nil
	})

	_, err := client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/x"})
	lexiaErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "srv-123", lexiaErr.RequestID)
	assert.Equal(t, "lexia service error: status 500: db down", lexiaErr.Error())
}

func TestDo_ConcurrentCalls(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"path":"` + r.URL.Path + `"}`))
	})

	const n = 20
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			result, err := client.Do(context.Background(), &Request{Method: http.MethodGet, Path: "/same"})
			if err == nil && result["path"] != "/same" {
				err = errors.New("unexpected result")
			}
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		assert.NoError(t, <-errs)
	}
	assert.Equal(t, int32(n), calls.Load())
}
