package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"

	apiContext "upiqr/internal/api/context"
	"upiqr/internal/engine/links"
	"upiqr/internal/pkg/errors"
	"upiqr/internal/platform/auth"
	"upiqr/internal/platform/metrics"
)

func param(r *http.Request, name string) string {
	params, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return params.ByName(name)
}

func claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(apiContext.Claims).(*auth.Claims)
	return claims
}

func pagination(r *http.Request) (limit, offset int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return limit, (page - 1) * limit
}

// writeDomainError maps engine errors onto the JSON error envelope.
func writeDomainError(w http.ResponseWriter, m *metrics.Metrics, err error) {
	var verr *links.ValidationError
	switch {
	case stderrors.As(err, &verr):
		if m != nil {
			m.ValidationFailures.WithLabelValues(verr.Field).Inc()
		}
		errors.Write(w, errors.New(errors.CodeInvalidInput, verr.Message).With("field", verr.Field))
	case stderrors.Is(err, links.ErrLinkNotFound):
		errors.Write(w, errors.New(errors.CodeNotFound, "Payment link not found"))
	case stderrors.Is(err, links.ErrShortCodeTaken):
		errors.Write(w, errors.New(errors.CodeConflict, err.Error()))
	case stderrors.Is(err, links.ErrInvalidShortCode), stderrors.Is(err, links.ErrInvalidStatus):
		errors.Write(w, errors.New(errors.CodeInvalidInput, err.Error()))
	default:
		log.Error().Err(err).Msg("request failed")
		errors.Write(w, errors.New(errors.CodeInternal, "Internal server error"))
	}
}
