package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 4 << 10

// ErrorResponse is the error body shape most JSON APIs use, either nested
// under "error" or flat.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	Message string      `json:"message,omitempty"`
}

// ErrorDetail is the nested form of ErrorResponse.
type ErrorDetail struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// GetMessage returns the nested message if present, otherwise the flat one.
func (e *ErrorResponse) GetMessage() string {
	if e.Error.Message != "" {
		return e.Error.Message
	}

	return e.Message
}

// ParseErrorResponse decodes body, returning nil when it carries no message.
func ParseErrorResponse(body io.Reader) *ErrorResponse {
	if body == nil {
		return nil
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&errResp); err != nil {
		return nil
	}

	if errResp.GetMessage() == "" && len(errResp.Error.Fields) == 0 {
		return nil
	}

	return &errResp
}

// MapHTTPError turns a transport failure or an unsuccessful response into a
// domain error. resp may be nil when clientErr is set.
//
//	404           -> domain.ErrNotFound
//	400, 422      -> domain.ErrValidation
//	anything else -> domain.ErrUnavailable
func MapHTTPError(resp *http.Response, clientErr error, service, operation string) error {
	if clientErr != nil {
		return mapClientError(clientErr, service, operation)
	}

	if resp == nil {
		return domain.NewUnavailableError(service, "no response received")
	}

	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	message := fmt.Sprintf("%s failed with status %d", operation, resp.StatusCode)

	errResp := ParseErrorResponse(resp.Body)
	if errResp != nil && errResp.GetMessage() != "" {
		message = errResp.GetMessage()
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return domain.NewNotFoundError(service, operation)

	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if errResp != nil {
			for field, msg := range errResp.Error.Fields {
				return domain.NewValidationError(field, msg)
			}
		}

		return domain.NewValidationError("", message)

	default:
		return domain.NewUnavailableError(service, message)
	}
}

func mapClientError(err error, service, operation string) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(service, "circuit breaker open during "+operation)

	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(service, fmt.Sprintf("%s: %v", operation, err))

	default:
		return domain.NewUnavailableError(service, fmt.Sprintf("%s failed: %v", operation, err))
	}
}
