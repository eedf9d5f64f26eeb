package lexia

import (
	"net/http"
	"time"

	"github.com/spf13/afero"
)

const (
	// DefaultTimeout bounds every request when Config.Timeout is zero
	DefaultTimeout = 30 * time.Second
	// Version is reported in the User-Agent header
	Version = "1.0.0"
	// DefaultUserAgent identifies this client to the API
	DefaultUserAgent = "kurai-go/" + Version

	HeaderAPIKey      = "X-API-Key"
	HeaderRequestID   = "X-Request-ID"
	HeaderRetryAfter  = "Retry-After"
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"
	ContentTypeBinary = "application/octet-stream"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	timeout    time.Duration
	userAgent  string
	httpClient *http.Client
	fs         afero.Fs
}

// WithTimeout overrides Config.Timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

// WithHTTPClient sets the underlying HTTP client. A copy is used without
// its cookie jar or redirect policy; its Transport and Timeout are kept and
// the client timeout is enforced per request through the context.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) {
		if httpClient != nil {
			o.httpClient = httpClient
		}
	}
}

// WithFs sets the filesystem used to open upload files by path.
func WithFs(fs afero.Fs) Option {
	return func(o *clientOptions) {
		if fs != nil {
			o.fs = fs
		}
	}
}
