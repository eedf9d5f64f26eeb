package lexia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Config is the immutable connection configuration of a Client.
type Config struct {
	TenantURL string
	APIKey    string
	Timeout   time.Duration
}

// Client represents a Lexia public API client. It is safe for concurrent use.
type Client struct {
	baseURL string
	timeout time.Duration
	rest    *resty.Client
	fs      afero.Fs
	logger  zerolog.Logger
}

// Request describes a single API call. Files switch the encoding to
// multipart/form-data; otherwise Body is sent as JSON.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Form holds text fields sent alongside Files
	Form  map[string]string
	Files []File
}

// NewClient creates a new Lexia client. No request is made.
func NewClient(cfg Config, logger zerolog.Logger, opts ...Option) (*Client, error) {
	tenantURL := strings.TrimSpace(cfg.TenantURL)
	if tenantURL == "" {
		return nil, configError("tenant URL is required (set it explicitly or via LEXIA_TENANT_URL)")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, configError("API key is required (set it explicitly or via LEXIA_API_KEY)")
	}

	parsed, err := url.Parse(tenantURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, configError("invalid tenant URL %q", tenantURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, configError("unsupported tenant URL scheme %q", parsed.Scheme)
	}

	o := clientOptions{
		timeout:   cfg.Timeout,
		userAgent: DefaultUserAgent,
		fs:        afero.NewOsFs(),
	}
	if o.timeout <= 0 {
		o.timeout = DefaultTimeout
	}
	for _, opt := range opts {
		opt(&o)
	}

	// Calls share no state: no cookie jar, and redirects are returned to
	// the caller instead of carrying the API key to another host.
	hc := &http.Client{}
	if o.httpClient != nil {
		copied := *o.httpClient
		hc = &copied
	}
	rest := resty.NewWithClient(hc)
	rest.SetCookieJar(nil).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		})).
		SetRetryCount(0).
		SetLogger(restyLogger{logger: logger}).
		SetHeader(HeaderAPIKey, apiKey).
		SetHeader("User-Agent", o.userAgent).
		SetHeader("Accept", ContentTypeJSON)

	return &Client{
		baseURL: strings.TrimRight(tenantURL, "/"),
		timeout: o.timeout,
		rest:    rest,
		fs:      o.fs,
		logger:  logger,
	}, nil
}

// BaseURL returns the tenant URL without trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Close releases idle connections held by the client.
func (c *Client) Close() {
	c.rest.GetClient().CloseIdleConnections()
}

// Do performs req and decodes the JSON object in the response.
func (c *Client) Do(ctx context.Context, req *Request) (Object, error) {
	body, requestID, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	obj, err := decodeObject(body)
	if err != nil {
		return nil, &Error{
			Kind:      KindAPI,
			Message:   "malformed JSON in success response",
			RawBody:   body,
			RequestID: requestID,
			Err:       err,
		}
	}
	return obj, nil
}

// DoRaw performs req and returns the response body untouched.
func (c *Client) DoRaw(ctx context.Context, req *Request) ([]byte, error) {
	body, _, err := c.do(ctx, req)
	return body, err
}

// do performs one round trip and maps failures to *Error
func (c *Client) do(ctx context.Context, req *Request) ([]byte, string, error) {
	if err := req.check(); err != nil {
		return nil, "", err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	path := req.path()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	requestID := uuid.New().String()
	r := c.rest.R().
		SetContext(reqCtx).
		SetHeader(HeaderRequestID, requestID)

	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}

	if len(req.Files) > 0 {
		if len(req.Form) > 0 {
			r.SetFormData(req.Form)
		}
		for _, f := range req.Files {
			r.SetMultipartField(f.Field, f.Name, ContentTypeBinary, f.Content)
		}
	} else if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, requestID, newError(KindInvalidInput, "failed to encode request body", err)
		}
		r.SetHeader(HeaderContentType, ContentTypeJSON).SetBody(payload)
	}

	start := time.Now()
	resp, err := r.Execute(req.Method, c.baseURL+path)
	if err != nil {
		lexiaErr := c.transportError(ctx, reqCtx, err)
		lexiaErr.RequestID = requestID
		c.logger.Debug().
			Err(err).
			Str("method", req.Method).
			Str("path", path).
			Str("request_id", requestID).
			Dur("duration", time.Since(start)).
			Msg("Lexia API request failed")
		return nil, requestID, lexiaErr
	}

	if respID := resp.Header().Get(HeaderRequestID); respID != "" {
		requestID = respID
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", path).
		Int("status", resp.StatusCode()).
		Str("request_id", requestID).
		Dur("duration", time.Since(start)).
		Msg("Lexia API request")

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return nil, requestID, responseError(status, resp.Header(), resp.Body(), requestID)
	}

	return resp.Body(), requestID, nil
}

// transportError classifies a failure that produced no HTTP response.
func (c *Client) transportError(parent, reqCtx context.Context, err error) *Error {
	switch {
	case errors.Is(parent.Err(), context.Canceled):
		return newError(KindCanceled, "request canceled", err)
	case errors.Is(parent.Err(), context.DeadlineExceeded):
		return newError(KindService, "request deadline exceeded", err)
	case errors.Is(reqCtx.Err(), context.DeadlineExceeded):
		return newError(KindService, fmt.Sprintf("request timed out after %s", c.timeout), err)
	default:
		return newError(KindService, "request failed", err)
	}
}

func responseError(status int, header http.Header, raw []byte, requestID string) *Error {
	body, _ := decodeObject(raw)
	if len(body) == 0 {
		body = nil
	}

	e := &Error{
		Kind:       KindForStatus(status),
		StatusCode: status,
		Message:    errorMessage(status, body, raw),
		Body:       body,
		RawBody:    raw,
		RequestID:  requestID,
	}
	if body != nil {
		e.Detail = body["detail"]
	}
	if status >= 300 && status < 400 {
		if location := header.Get("Location"); location != "" {
			e.Message = "redirect to " + location + " not followed"
		}
	}
	if e.Kind == KindRateLimit {
		e.RetryAfter = parseRetryAfter(header.Get(HeaderRetryAfter))
	}
	return e
}

func errorMessage(status int, body Object, raw []byte) string {
	var msg string
	if body != nil {
		for _, key := range []string{"error", "message"} {
			if s, ok := body[key].(string); ok && s != "" {
				msg = s
				break
			}
		}
		if detail, ok := body["detail"].(string); ok && detail != "" {
			if msg == "" {
				msg = detail
			} else {
				msg += ": " + detail
			}
		}
	}
	if msg != "" {
		return msg
	}

	if text := strings.TrimSpace(string(raw)); text != "" && body == nil {
		const maxLen = 200
		if len(text) > maxLen {
			text = text[:maxLen] + "..."
		}
		return text
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "HTTP " + strconv.Itoa(status)
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(value string) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// decodeObject decodes a JSON object, keeping numbers as json.Number.
// An empty body decodes to an empty Object.
func decodeObject(body []byte) (Object, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Object{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var obj Object
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("expected a JSON object, got null")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON object")
	}
	return obj, nil
}

// path returns Path with a leading slash. The request is not modified.
func (r *Request) path() string {
	if strings.HasPrefix(r.Path, "/") {
		return r.Path
	}
	return "/" + r.Path
}

func (r *Request) check() error {
	if r == nil {
		return inputError("request is nil", nil)
	}
	if r.Method == "" {
		return inputError("request method is required", nil)
	}
	if r.Path == "" {
		return inputError("request path is required", nil)
	}
	if len(r.Files) > 0 && r.Body != nil {
		return inputError("a request cannot carry both a JSON body and files", nil)
	}
	if len(r.Files) == 0 && len(r.Form) > 0 {
		return inputError("form fields are only sent with files", nil)
	}
	for i, f := range r.Files {
		if f.Content == nil {
			return inputError(fmt.Sprintf("file %d (%s) has no content", i, f.Name), nil)
		}
		if f.Field == "" {
			return inputError(fmt.Sprintf("file %d (%s) has no form field name", i, f.Name), nil)
		}
	}
	return nil
}

// restyLogger routes resty's internal logging through zerolog.
type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Debug().Str("component", "resty").Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Str("component", "resty").Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Str("component", "resty").Msgf(format, v...)
}
