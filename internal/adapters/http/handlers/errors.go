package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/platform/logging"
)

// MapDomainError maps err to a status and error body. Errors outside the
// domain taxonomy become a 500 with a generic message.
func MapDomainError(err error) (int, *dto.ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	var (
		validationErr *domain.ValidationError
		maxBytesErr   *http.MaxBytesError
	)

	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, dto.NewErrorResponse(dto.ErrorCodeNotFound, err.Error())

	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, dto.NewErrorResponse(dto.ErrorCodePayloadTooLarge, "request body too large")

	case domain.IsMalformedDocument(err):
		return http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorCodeBadRequest, err.Error())

	case errors.As(err, &validationErr):
		resp := dto.NewErrorResponse(dto.ErrorCodeValidation, err.Error())
		if validationErr.Field != "" {
			resp.Error.Details = map[string]string{validationErr.Field: validationErr.Message}
		}

		return http.StatusBadRequest, resp

	case domain.IsValidation(err):
		return http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorCodeValidation, err.Error())

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, dto.NewErrorResponse(dto.ErrorCodeUnavailable, err.Error())

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, dto.NewErrorResponse(dto.ErrorCodeTimeout, "request timeout exceeded")

	default:
		return http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrorCodeInternal, "an internal error occurred")
	}
}

// RespondWithError writes the mapped error body. 500s are logged in full.
func RespondWithError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	resp.WithTraceID(traceID(c))

	if status == http.StatusInternalServerError {
		ctx := c.Request.Context()
		logging.FromContext(ctx).ErrorContext(ctx, "internal error", slog.Any("error", err))
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// RespondWithBindingError answers a request whose body or query failed to
// decode or validate.
func RespondWithBindingError(c *gin.Context, err error) {
	var (
		resp        *dto.ErrorResponse
		status      = http.StatusBadRequest
		maxBytesErr *http.MaxBytesError
	)

	switch {
	case dto.IsValidationError(err):
		resp = dto.NewErrorResponseWithDetails(dto.ErrorCodeValidation, "request validation failed", dto.ValidationErrors(err))
	case errors.As(err, &maxBytesErr):
		status = http.StatusRequestEntityTooLarge
		resp = dto.NewErrorResponse(dto.ErrorCodePayloadTooLarge, "request body too large")
	default:
		resp = dto.NewErrorResponse(dto.ErrorCodeBadRequest, err.Error())
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp.WithTraceID(traceID(c)))
}

func traceID(c *gin.Context) string {
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return ""
}
