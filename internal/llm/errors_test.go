package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", &StatusError{StatusCode: 429}, true},
		{"500", &StatusError{StatusCode: 500}, true},
		{"wrapped 503", fmt.Errorf("call: %w", &StatusError{StatusCode: 503}), true},
		{"400", &StatusError{StatusCode: 400}, false},
		{"404", &StatusError{StatusCode: 404}, false},
		{"circuit open", ErrCircuitOpen, false},
		{"cancelled", context.Canceled, false},
		{"openai 429", &openai.APIError{HTTPStatusCode: 429}, true},
		{"openai 401", &openai.APIError{HTTPStatusCode: 401}, false},
		{"openai request 502", &openai.RequestError{HTTPStatusCode: 502}, true},
		{"anthropic overloaded", &anthropic.APIError{Type: "overloaded_error"}, true},
		{"anthropic invalid request", &anthropic.APIError{Type: "invalid_request_error"}, false},
		{"anthropic request 500", &anthropic.RequestError{StatusCode: 500}, true},
		{"network", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"generic", errors.New("nope"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
