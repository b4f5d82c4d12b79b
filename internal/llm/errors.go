package llm

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"
)

var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a call.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrEmptyResponse is returned when a provider answers without any text.
	ErrEmptyResponse = errors.New("model returned an empty response")
)

// StatusError is a non-2xx HTTP answer from a provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// IsTransient reports whether err is worth retrying: rate limiting (429),
// server errors (5xx) and network failures. Client errors, an open circuit and
// caller cancellation are not.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, ErrCircuitOpen) {
		return false
	}

	var status *StatusError
	if errors.As(err, &status) {
		return transientStatus(status.StatusCode)
	}

	var oaiAPI *openai.APIError
	if errors.As(err, &oaiAPI) {
		return transientStatus(oaiAPI.HTTPStatusCode)
	}
	var oaiReq *openai.RequestError
	if errors.As(err, &oaiReq) {
		return transientStatus(oaiReq.HTTPStatusCode)
	}

	var antAPI *anthropic.APIError
	if errors.As(err, &antAPI) {
		switch string(antAPI.Type) {
		case "rate_limit_error", "overloaded_error", "api_error":
			return true
		}
		return false
	}
	var antReq *anthropic.RequestError
	if errors.As(err, &antReq) {
		return transientStatus(antReq.StatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}

func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
