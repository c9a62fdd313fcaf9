package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"kpi-dashboard/pkg/calculator"
	"kpi-dashboard/pkg/dashboard"
	"kpi-dashboard/pkg/models"
)

// Handler sert les requêtes du tableau de bord en JSON.
type Handler struct {
	svc *dashboard.Service
	log logrus.FieldLogger
}

func NewHandler(svc *dashboard.Service, logger logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, log: logger.WithField("component", "api")}
}

// Routes renvoie les routes /api/v1.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/filters", h.GetFilters)
	r.Get("/kpis", h.GetSnapshot)
	r.Get("/kpis/evaluation", h.GetEvaluation)
	r.Get("/kpis/monthly", h.GetMonthly)
	r.Get("/breakdowns/{dimension}", h.GetBreakdown)
	r.Get("/shares/{dimension}/{key}", h.GetShare)
	r.Get("/delivery-buckets", h.GetDeliveryBuckets)
	r.Get("/trend", h.GetTrend)
	r.Get("/reference", h.ListReference)
	r.Get("/reference/{kpi}", h.GetReference)
	r.Get("/personas", h.ListPersonas)
	r.Get("/personas/{role}", h.GetPersona)
	return r
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	resp := errResponse(err)
	entry := h.log.WithError(err).WithFields(logrus.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"path":       r.URL.Path,
		"status":     resp.HTTPStatusCode,
	})
	if resp.HTTPStatusCode >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}
	_ = render.Render(w, r, resp)
}

type snapshotResponse struct {
	Criteria models.Criteria `json:"criteria"`
	Snapshot models.Snapshot `json:"snapshot"`
}

type evaluationResponse struct {
	Criteria    models.Criteria     `json:"criteria"`
	Against     string              `json:"against"`
	Evaluations []models.Evaluation `json:"evaluations"`
}

type breakdownResponse struct {
	Criteria   models.Criteria        `json:"criteria"`
	Dimension  calculator.Dimension   `json:"dimension"`
	Aggregates []calculator.Aggregate `json:"aggregates"`
	Rows       []models.GroupRow      `json:"rows"`
}

func (h *Handler) GetFilters(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.svc.Filters())
}

// GetSnapshot traite GET /kpis?year=&region=&category=
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	crit, err := criteriaFromQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	snap, err := h.svc.Snapshot(r.Context(), crit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, snapshotResponse{Criteria: crit, Snapshot: snap})
}

// GetEvaluation traite GET /kpis/evaluation?against=targets|previous_year
func (h *Handler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	crit, err := criteriaFromQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	against := strings.ToLower(r.URL.Query().Get("against"))
	var evals []models.Evaluation
	switch against {
	case "", "targets":
		against = "targets"
		evals, err = h.svc.Targets(r.Context(), crit)
	case "previous_year":
		evals, err = h.svc.CompareToPreviousYear(r.Context(), crit)
	default:
		err = fmt.Errorf("%w: against %q", ErrInvalidParam, against)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, evaluationResponse{Criteria: crit, Against: against, Evaluations: evals})
}

// GetMonthly traite GET /kpis/monthly?start_month=MMYYYY&end_month=MMYYYY
func (h *Handler) GetMonthly(w http.ResponseWriter, r *http.Request) {
	crit, err := criteriaFromQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q := r.URL.Query()
	res, err := h.svc.Monthly(crit, q.Get("start_month"), q.Get("end_month"))
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: %w", ErrInvalidParam, err))
		return
	}
	render.JSON(w, r, res)
}

// GetBreakdown traite GET /breakdowns/{dimension}?agg=op:field&top=N
func (h *Handler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	crit, err := criteriaFromQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	dim, err := calculator.ParseDimension(chi.URLParam(r, "dimension"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	aggs, err := parseAggregates(r, calculator.Sum(calculator.MeasurePrice), calculator.Distinct(calculator.IDOrder))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	top, err := intParam(r, "top", 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	rows, err := h.svc.Breakdown(crit, dim, top, aggs...)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, breakdownResponse{Criteria: crit, Dimension: dim, Aggregates: aggs, Rows: rows})
}

type shareResponse struct {
	Criteria  models.Criteria      `json:"criteria"`
	Dimension calculator.Dimension `json:"dimension"`
	Key       string               `json:"key"`
	Pct       float64              `json:"pct"`
}

// GetShare traite GET /shares/{dimension}/{key}, ex: /shares/payment_method/card
func (h *Handler) GetShare(w http.ResponseWriter, r *http.Request) {
	crit, err := criteriaFromQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	dim, err := calculator.ParseDimension(chi.URLParam(r, "dimension"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	key := chi.URLParam(r, "key")
	pct, err := h.svc.Share(crit, dim, key)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, shareResponse{Criteria: crit, Dimension: dim, Key: key, Pct: pct})
}

func (h *Handler) GetDeliveryBuckets(w http.ResponseWriter, r *http.Request) {
	crit, err := criteriaFromQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, h.svc.DeliveryBuckets(crit))
}

// GetTrend traite GET /trend?agg=op:field (un seul agrégat, sum:price par défaut)
func (h *Handler) GetTrend(w http.ResponseWriter, r *http.Request) {
	crit, err := criteriaFromQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	aggs, err := parseAggregates(r, calculator.Sum(calculator.MeasurePrice))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if len(aggs) != 1 {
		h.fail(w, r, fmt.Errorf("%w: trend takes a single agg", ErrInvalidParam))
		return
	}

	res, err := h.svc.Trend(crit, aggs[0])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, res)
}

func (h *Handler) ListReference(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.svc.Catalog().Entries())
}

func (h *Handler) GetReference(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.Catalog().Lookup(chi.URLParam(r, "kpi"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, entry)
}

func (h *Handler) ListPersonas(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.svc.Catalog().Personas())
}

// GetPersona traite GET /personas/{role}: le persona et ses KPI calculés.
func (h *Handler) GetPersona(w http.ResponseWriter, r *http.Request) {
	crit, err := criteriaFromQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	view, err := h.svc.Persona(r.Context(), crit, chi.URLParam(r, "role"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	render.JSON(w, r, view)
}
