package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/health-insights/internal/api/response"
	"github.com/Rrens/health-insights/internal/domain"
	"github.com/Rrens/health-insights/internal/repository/mongo"
	"github.com/Rrens/health-insights/internal/service"
)

// writeError maps the domain error taxonomy onto HTTP statuses
func writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		response.BadRequest(w, ve.Fields)
	case errors.Is(err, domain.ErrValidation):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.Unauthorized(w, "invalid email or password")
	case errors.Is(err, domain.ErrUnauthorized):
		response.Unauthorized(w, "unauthorized")
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, mongo.ErrArchiveNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, domain.ErrDuplicateUser),
		errors.Is(err, domain.ErrNoActiveSession):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrReportTooLarge):
		response.Error(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, domain.ErrReportRejected):
		response.Error(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, domain.ErrRateLimitExceeded):
		response.TooManyRequests(w, err.Error())
	case errors.Is(err, domain.ErrEngine):
		response.Error(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, domain.ErrAuthProvider),
		errors.Is(err, service.ErrArchiveDisabled):
		response.Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Error().Err(err).Msg("Request failed")
		response.InternalError(w, "internal server error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrReportTooLarge, tooLarge.Limit)
		}
		return domain.NewValidationError("body", "must be valid JSON")
	}
	return nil
}
