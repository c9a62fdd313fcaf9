package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"kpi-dashboard/pkg/calculator"
	"kpi-dashboard/pkg/dashboard"
	"kpi-dashboard/pkg/models"
	"kpi-dashboard/pkg/reference"
)

// ErrInvalidParam signale un paramètre de requête ou de chemin mal formé.
var ErrInvalidParam = errors.New("invalid parameter")

// ErrResponse est le corps JSON de toute requête en échec.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
}

func (e *ErrResponse) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

// statusFor associe les erreurs du domaine aux codes HTTP.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrUnknownMetric), errors.Is(err, reference.ErrUnknownPersona):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidParam),
		errors.Is(err, calculator.ErrUnknownDimension),
		errors.Is(err, calculator.ErrInvalidAggregate),
		errors.Is(err, dashboard.ErrYearRequired):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func errResponse(err error) *ErrResponse {
	code := statusFor(err)
	resp := &ErrResponse{Err: err, HTTPStatusCode: code, StatusText: http.StatusText(code)}
	if code != http.StatusInternalServerError {
		resp.ErrorText = err.Error()
	}
	return resp
}
