package pinecone

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/custodia-labs/ragbot/internal/core/domain"
)

// APIError represents a Pinecone API error response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Op         string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("pinecone: %s: %d %s: %s", e.Op, e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("pinecone: %s: %d: %s", e.Op, e.StatusCode, msg)
}

// Unwrap maps well-known statuses to domain errors.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case http.StatusBadRequest:
		return domain.ErrInvalidInput
	default:
		return nil
	}
}

// IsConflict reports whether the error is a 409, returned when creating an
// index that already exists.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// decodeError reads both envelopes Pinecone uses: the control plane nests
// code and message under "error", the data plane puts them at top level
// with a numeric code.
func decodeError(resp *http.Response, op string) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Op: op}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var env struct {
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(body, &env) != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	switch {
	case env.Error != nil:
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	case env.Message != "":
		apiErr.Message = env.Message
	default:
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
