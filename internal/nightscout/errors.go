package nightscout

import "fmt"

// TransportError reports a failed request or a non-2xx status.
// StatusCode is zero when no response was received.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("api %s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a response body that does not hold a usable entry.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse entry: %s: %v", e.Reason, e.Err)
	}
	return "parse entry: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }
