package web

import (
	"encoding/json"
	goerrors "errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"github.com/benefits-network/benefits-bpp/bpp/constants"
	"github.com/benefits-network/benefits-bpp/bpp/health"
	"github.com/benefits-network/benefits-bpp/bpp/metrics"
	"github.com/benefits-network/benefits-bpp/bpp/models"
	"github.com/benefits-network/benefits-bpp/bpp/responseutils"
	"github.com/benefits-network/benefits-bpp/bpp/service"
	"github.com/benefits-network/benefits-bpp/log"
)

// API holds the dependencies of the HTTP handlers.
type API struct {
	service service.Service
	health  health.Checker
	metrics *metrics.Metrics
}

// NewAPI returns the handlers for svc. m may be nil.
func NewAPI(svc service.Service, hc health.Checker, m *metrics.Metrics) *API {
	return &API{service: svc, health: hc, metrics: m}
}

/*
Search answers a search request with the catalog of every benefit.

POST /benefits/search
Responses: 200 on_search message, 400 invalid domain or requester, 500 upstream failure
*/
func (a *API) Search(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if !a.decode(w, r, constants.OnSearch, &req) {
		return
	}

	resp, err := a.service.Search(r.Context(), req)
	a.respond(w, r, constants.OnSearch, resp, err)
}

func (a *API) Select(w http.ResponseWriter, r *http.Request) {
	var req models.SelectRequest
	if !a.decode(w, r, constants.OnSelect, &req) {
		return
	}

	resp, err := a.service.Select(r.Context(), req)
	a.respond(w, r, constants.OnSelect, resp, err)
}

func (a *API) Init(w http.ResponseWriter, r *http.Request) {
	var req models.InitRequest
	if !a.decode(w, r, constants.OnInit, &req) {
		return
	}

	resp, err := a.service.Init(r.Context(), req)
	a.respond(w, r, constants.OnInit, resp, err)
}

// ListBenefits proxies the content manager listing with the caller's Authorization
// header. An empty body selects the default page.
func (a *API) ListBenefits(w http.ResponseWriter, r *http.Request) {
	var params models.ListBenefitsParams
	if err := render.DecodeJSON(r.Body, &params); err != nil && !goerrors.Is(err, io.EOF) {
		log.WriteWarnWithFields(r.Context(), "Failed to decode listing request", logrus.Fields{"error": err.Error()})
		responseutils.Write(w, r, http.StatusBadRequest, responseutils.BadRequestErr)
		return
	}

	body, err := a.service.ListBenefits(r.Context(), params, r.Header.Get("Authorization"))
	if err != nil {
		responseutils.WriteError(r.Context(), w, r, err)
		return
	}
	writeRaw(w, body)
}

func (a *API) GetBenefit(w http.ResponseWriter, r *http.Request) {
	body, err := a.service.GetBenefit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		responseutils.WriteError(r.Context(), w, r, err)
		return
	}
	writeRaw(w, body)
}

func (a *API) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"version": constants.Version})
}

func (a *API) HealthCheck(w http.ResponseWriter, r *http.Request) {
	m := make(map[string]string)

	dbResult, dbOK := a.health.IsDatabaseOK(r.Context())
	contentResult, contentOK := a.health.IsContentOK(r.Context())
	m["database"] = dbResult
	m["content"] = contentResult

	if dbOK && contentOK {
		render.Status(r, http.StatusOK)
	} else {
		render.Status(r, http.StatusBadGateway)
	}
	render.JSON(w, r, m)
}

// decode reads the request body into v. On failure it answers 400 and reports false.
func (a *API) decode(w http.ResponseWriter, r *http.Request, action string, v interface{}) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		log.WriteWarnWithFields(r.Context(), "Failed to decode request body", logrus.Fields{
			"action": action,
			"error":  err.Error(),
		})
		a.metrics.IncrementAction(action, metrics.OutcomeClientError)
		responseutils.Write(w, r, http.StatusBadRequest, responseutils.BadRequestErr)
		return false
	}
	return true
}

func (a *API) respond(w http.ResponseWriter, r *http.Request, action string, resp interface{}, err error) {
	if err != nil {
		status, _ := responseutils.StatusFor(err)
		if status >= http.StatusInternalServerError {
			a.metrics.IncrementAction(action, metrics.OutcomeServerError)
		} else {
			a.metrics.IncrementAction(action, metrics.OutcomeClientError)
		}
		responseutils.WriteError(r.Context(), w, r, err)
		return
	}

	a.metrics.IncrementAction(action, metrics.OutcomeSuccess)
	render.JSON(w, r, resp)
}

func writeRaw(w http.ResponseWriter, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(body); err != nil {
		log.API.Error(err)
	}
}
