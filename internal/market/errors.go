package market

import "fmt"

// TransportError reports that the provider could not be reached, or answered
// with a non-2xx status.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request eastmoney: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("request eastmoney: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ResponseFormatError reports a 2xx response whose body is not the expected shape.
type ResponseFormatError struct {
	Reason string
	Err    error
}

func (e *ResponseFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode eastmoney: %s: %v", e.Reason, e.Err)
	}
	return "decode eastmoney: " + e.Reason
}

func (e *ResponseFormatError) Unwrap() error { return e.Err }
