package httputil

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// MaxBodySize caps [ReadBody]. Rendered surfaces stay far below it.
const MaxBodySize = 64 << 20

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	// Body holds the start of the response body, for logs.
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// CheckResponse returns nil for 2xx responses. Otherwise it returns a
// [StatusError], wrapped in [RetryableError] for 5xx and 429.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	err := &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return &RetryableError{Err: err}
	}
	return err
}

// ReadBody reads at most [MaxBodySize] bytes of r.
func ReadBody(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBodySize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxBodySize {
		return nil, fmt.Errorf("body exceeds %d bytes", MaxBodySize)
	}
	return data, nil
}
