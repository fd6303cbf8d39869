package fetch

import (
	"fmt"
	"net/http"
)

// TransportError wraps a failure to obtain a response at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPStatusError is returned when the server answers with anything but 200.
type HTTPStatusError struct {
	Code int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("bad status: %d %s", e.Code, http.StatusText(e.Code))
}

// JSONDecodeError is returned when a 200 body is not a JSON object.
type JSONDecodeError struct {
	Err error
}

func (e *JSONDecodeError) Error() string {
	return fmt.Sprintf("json decode: %v", e.Err)
}

func (e *JSONDecodeError) Unwrap() error {
	return e.Err
}
