package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/benefits-network/benefits-bpp/bpp/constants"
	bpperrors "github.com/benefits-network/benefits-bpp/bpp/errors"
	"github.com/benefits-network/benefits-bpp/bpp/health"
	"github.com/benefits-network/benefits-bpp/bpp/metrics"
	"github.com/benefits-network/benefits-bpp/bpp/models"
	"github.com/benefits-network/benefits-bpp/bpp/responseutils"
	"github.com/benefits-network/benefits-bpp/bpp/service"
	"github.com/benefits-network/benefits-bpp/bpp/testUtils"
)

const searchBody = `{"context":{"domain":"finance","action":"search","bap_id":"bap.example.org","bap_uri":"https://bap.example.org"},"message":{}}`

type APITestSuite struct {
	suite.Suite
	service *service.MockService
	metrics *metrics.Metrics
	router  http.Handler
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (s *APITestSuite) SetupTest() {
	s.service = &service.MockService{}
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.router = NewAPIRouter(NewAPI(s.service, health.MockHealthChecker{DbOk: true, ContentOk: true}, s.metrics), nil)
}

func (s *APITestSuite) TearDownTest() {
	s.service.AssertExpectations(s.T())
}

func (s *APITestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *APITestSuite) errorBody(rr *httptest.ResponseRecorder) responseutils.ErrorResponse {
	var body responseutils.ErrorResponse
	require.NoError(s.T(), json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func (s *APITestSuite) TestSearch() {
	resp := &models.OnActionResponse{Context: models.Context{Action: constants.OnSearch, BapID: "bap.example.org"}}
	s.service.On("Search", testUtils.CtxMatcher, mock.MatchedBy(func(req models.SearchRequest) bool {
		return req.Context.Domain == "finance" && req.Context.BapID == "bap.example.org"
	})).Return(resp, nil)

	rr := s.do(http.MethodPost, "/benefits/search", searchBody)
	assert.Equal(s.T(), http.StatusOK, rr.Code)
	assert.Contains(s.T(), rr.Header().Get("Content-Type"), "application/json")
	assert.Equal(s.T(), "close", rr.Header().Get("Connection"))
	assert.NotEmpty(s.T(), rr.Header().Get("X-Request-Id"))

	var out models.OnActionResponse
	require.NoError(s.T(), json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(s.T(), "on_search", out.Context.Action)
	assert.Equal(s.T(), 1.0, testutil.ToFloat64(s.metrics.Actions.WithLabelValues(constants.OnSearch, metrics.OutcomeSuccess)))
}

func (s *APITestSuite) TestSearchErrors() {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
		outcome string
	}{
		{"UnsupportedDomain", &bpperrors.UnsupportedDomainError{Domain: "education"}, http.StatusBadRequest, "Invalid domain provided", metrics.OutcomeClientError},
		{"InvalidRequester", &bpperrors.InvalidRequesterIdentityError{}, http.StatusBadRequest, "Invalid BAP ID or URI", metrics.OutcomeClientError},
		{"Upstream", &bpperrors.UpstreamFetchError{Source: "content repository", StatusCode: 500, Err: errors.New("token=secret")},
			http.StatusInternalServerError, responseutils.UpstreamErr, metrics.OutcomeServerError},
	}

	for _, tt := range tests {
		s.T().Run(tt.name, func(t *testing.T) {
			s.service.On("Search", testUtils.CtxMatcher, mock.Anything).Return(nil, tt.err).Once()

			rr := s.do(http.MethodPost, "/benefits/search", searchBody)
			assert.Equal(t, tt.status, rr.Code)
			body := s.errorBody(rr)
			assert.Equal(t, tt.status, body.StatusCode)
			assert.Equal(t, tt.message, body.Message)
			assert.Equal(t, http.StatusText(tt.status), body.Error)
			assert.NotContains(t, rr.Body.String(), "secret")
		})
	}

	assert.Equal(s.T(), 2.0, testutil.ToFloat64(s.metrics.Actions.WithLabelValues(constants.OnSearch, metrics.OutcomeClientError)))
	assert.Equal(s.T(), 1.0, testutil.ToFloat64(s.metrics.Actions.WithLabelValues(constants.OnSearch, metrics.OutcomeServerError)))
}

func (s *APITestSuite) TestMalformedBody() {
	for _, path := range []string{"/benefits/search", "/benefits/select", "/benefits/init"} {
		s.T().Run(path, func(t *testing.T) {
			rr := s.do(http.MethodPost, path, `{"context":`)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, responseutils.BadRequestErr, s.errorBody(rr).Message)
		})
	}
	s.service.AssertNotCalled(s.T(), "Search", mock.Anything, mock.Anything)
}

func (s *APITestSuite) TestSelectNotFound() {
	s.service.On("Select", testUtils.CtxMatcher, mock.MatchedBy(func(req models.SelectRequest) bool {
		id, _ := req.Message.FirstItemID()
		return id == "404"
	})).Return(nil, &bpperrors.UpstreamFetchError{StatusCode: 404, Err: bpperrors.ErrBenefitNotFound})

	rr := s.do(http.MethodPost, "/benefits/select",
		`{"context":{"bap_id":"bap","bap_uri":"https://bap"},"message":{"order":{"items":[{"id":"404"}]}}}`)
	assert.Equal(s.T(), http.StatusNotFound, rr.Code)
	assert.Equal(s.T(), responseutils.NotFoundErr, s.errorBody(rr).Message)
}

func (s *APITestSuite) TestInitFailure() {
	s.service.On("Init", testUtils.CtxMatcher, mock.Anything).Return(nil, &bpperrors.InitializationError{
		Stage: bpperrors.StageMap, BenefitID: "42", Err: &bpperrors.InvalidInputError{Msg: "bad date"},
	})

	rr := s.do(http.MethodPost, "/benefits/init", `{"context":{},"message":{"order":{"items":[{"id":"42"}]}}}`)
	assert.Equal(s.T(), http.StatusInternalServerError, rr.Code)
	assert.Equal(s.T(), "Failed to initialize benefit", s.errorBody(rr).Message)
	assert.NotContains(s.T(), rr.Body.String(), "bad date")
}

func (s *APITestSuite) TestListBenefits() {
	params := models.ListBenefitsParams{Page: "2", Sort: "title:asc"}
	s.service.On("ListBenefits", testUtils.CtxMatcher, params, "Bearer caller").
		Return(json.RawMessage(`{"results":[],"pagination":{"page":2}}`), nil)

	req := httptest.NewRequest(http.MethodPost, "/benefits/getBenefits", strings.NewReader(`{"page":2,"sort":"title:asc"}`))
	req.Header.Set("Authorization", "Bearer caller")
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	assert.Equal(s.T(), http.StatusOK, rr.Code)
	assert.JSONEq(s.T(), `{"results":[],"pagination":{"page":2}}`, rr.Body.String())
}

func (s *APITestSuite) TestListBenefitsEmptyBody() {
	s.service.On("ListBenefits", testUtils.CtxMatcher, models.ListBenefitsParams{}, "").
		Return(json.RawMessage(`{"results":[]}`), nil)

	rr := s.do(http.MethodPost, "/benefits/getBenefits", "")
	assert.Equal(s.T(), http.StatusOK, rr.Code)
}

func (s *APITestSuite) TestGetBenefit() {
	s.service.On("GetBenefit", testUtils.CtxMatcher, "42").Return(json.RawMessage(`{"documentId":"42"}`), nil)

	rr := s.do(http.MethodGet, "/benefits/getById/42", "")
	assert.Equal(s.T(), http.StatusOK, rr.Code)
	assert.JSONEq(s.T(), `{"documentId":"42"}`, rr.Body.String())
}

func (s *APITestSuite) TestVersion() {
	rr := s.do(http.MethodGet, "/_version", "")
	assert.Equal(s.T(), http.StatusOK, rr.Code)
	assert.JSONEq(s.T(), `{"version":"`+constants.Version+`"}`, rr.Body.String())
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name    string
		checker health.MockHealthChecker
		status  int
	}{
		{"Healthy", health.MockHealthChecker{DbOk: true, ContentOk: true}, http.StatusOK},
		{"DatabaseDown", health.MockHealthChecker{ContentOk: true}, http.StatusBadGateway},
		{"ContentDown", health.MockHealthChecker{DbOk: true}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewAPIRouter(NewAPI(&service.MockService{}, tt.checker, nil), nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/_health", nil))

			assert.Equal(t, tt.status, rr.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Contains(t, body, "database")
			assert.Contains(t, body, "content")
		})
	}
}
