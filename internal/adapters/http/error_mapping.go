package httpadapter

import (
	"errors"
	"net/http"

	"github.com/sellerdesk/listing-pipeline/internal/core/domain"
)

var errEmptyPayload = errors.New("empty payload")

func mapErrorToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
