// Package lexia provides a client for the Lexia public document-automation API.
//
// The API covers document upload and extraction, work queues, tabular grids,
// areas and email. Payloads are opaque JSON owned by the remote service, so
// every call returns a generic Object (map[string]any).
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client, err := lexia.NewClient(lexia.Config{
//		TenantURL: "https://api.cloud.lexia.la",
//		APIKey:    apiKey,
//		Timeout:   30 * time.Second,
//	}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	doc, err := client.UploadAndProcessDocument(ctx, "invoice.pdf", 1, "January invoice")
//
// # Requests
//
// Every call goes through Client.Do, which attaches the X-API-Key header,
// encodes files as multipart/form-data and everything else as JSON, enforces
// the configured timeout and performs exactly one round trip. The client
// never retries; see the retry package for a caller-side policy.
//
// # Error Handling
//
// Failures are *Error values carrying a Kind. Each kind has a sentinel:
//
//   - ErrConfiguration: missing tenant URL or API key
//   - ErrAuthentication: 401 or 403
//   - ErrNotFound: 404
//   - ErrValidation: 400 or 422, with the server's detail in Error.Detail
//   - ErrRateLimited: 429, with Error.RetryAfter when the server sent one
//   - ErrService: 5xx, timeouts and network failures
//   - ErrCanceled: the caller's context was canceled
//   - ErrAPI: any other status or a malformed success body
//   - ErrFile, ErrInvalidInput: rejected locally, before any request
//
//	if errors.Is(err, lexia.ErrNotFound) {
//		// handle missing document
//	}
package lexia
