// Package httputil provides the HTTP plumbing shared by the viewer's
// clients.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff, but only for
// failures wrapped in [RetryableError]. [CheckResponse] turns a non-2xx
// response into a [StatusError] and marks 5xx and 429 as retryable:
//
//	err := httputil.Retry(ctx, 3, 200*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckResponse(resp)
//	})
//
// # Reading bodies
//
// [ReadBody] reads a response body with a size cap so a misbehaving server
// cannot exhaust memory.
package httputil
