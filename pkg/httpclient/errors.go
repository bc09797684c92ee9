package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	apperrors "github.com/utafrali/posterminal/pkg/errors"
)

// MaxBodyBytes caps how much of a response body is read into memory.
const MaxBodyBytes = 1 << 20

// IsJSON reports whether a Content-Type header value declares JSON,
// including vendor types such as application/problem+json.
func IsJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// ReadBody reads and closes the response body, up to MaxBodyBytes.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return body, nil
}

// DecodeBody interprets raw according to the declared content type: a JSON
// value when the type is JSON and the body parses, otherwise the trimmed text.
// An empty body decodes to nil.
func DecodeBody(contentType string, raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	if IsJSON(contentType) {
		var v any
		if err := json.Unmarshal(raw, &v); err == nil {
			return v
		}
	}
	return strings.TrimSpace(string(raw))
}

// ParseResponseError reads the body of a non-2xx HTTP response and turns it
// into an *apperrors.APIError carrying the status and decoded body.
//
// The caller should only invoke this when resp.StatusCode indicates an error
// (i.e., not 2xx). The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, method, path string) *apperrors.APIError {
	apiErr := &apperrors.APIError{
		Method: method,
		Path:   path,
		Status: resp.StatusCode,
	}
	raw, err := ReadBody(resp)
	if err != nil {
		return apiErr
	}
	apiErr.Raw = raw
	apiErr.Body = DecodeBody(resp.Header.Get("Content-Type"), raw)
	return apiErr
}

// IsSuccess returns true for 2xx status codes.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
