package transport

import "fmt"

// codedError is the transport's concrete error type: it carries the code
// the retry engine classifies on (retry.Coded) directly, no string sniffing
// required for errors this package produces itself.
type codedError struct {
	code string
	msg  string
}

func (e *codedError) Error() string { return e.msg }
func (e *codedError) Code() string  { return e.code }

// RequestTimeoutError is raised when no response headers arrive within the
// client-side timeout.
func RequestTimeoutError(d any) error {
	return &codedError{code: "RequestTimeoutError", msg: fmt.Sprintf("no response headers within client timeout (%v)", d)}
}

// RequestAbortedError is raised when the peer resets or closes the
// connection after the request has been sent.
func RequestAbortedError(cause error) error {
	return &codedError{code: "RequestAbortedError", msg: fmt.Sprintf("connection aborted before response completed: %v", cause)}
}

// RequestContentLengthError is raised when the accumulated response body
// length does not match an advertised Content-Length.
func RequestContentLengthError(want, got int64) error {
	return &codedError{code: "RequestContentLengthError", msg: fmt.Sprintf("response body length %d does not match content-length %d", got, want)}
}
