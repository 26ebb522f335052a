package responseutils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bpperrors "github.com/benefits-network/benefits-bpp/bpp/errors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"InvalidInput", &bpperrors.InvalidInputError{Msg: "message.order.items[0].id is required"},
			http.StatusBadRequest, "invalid input: message.order.items[0].id is required"},
		{"InvalidRequester", &bpperrors.InvalidRequesterIdentityError{}, http.StatusBadRequest, "Invalid BAP ID or URI"},
		{"UnsupportedDomain", &bpperrors.UnsupportedDomainError{Domain: "education"}, http.StatusBadRequest, "Invalid domain provided"},
		{"NotFound", &bpperrors.UpstreamFetchError{Source: "content repository", StatusCode: 404, Err: bpperrors.ErrBenefitNotFound},
			http.StatusNotFound, NotFoundErr},
		{"Upstream", &bpperrors.UpstreamFetchError{Source: "content repository", StatusCode: 503, Err: errors.New("unavailable")},
			http.StatusInternalServerError, UpstreamErr},
		{"InitAtFetch", &bpperrors.InitializationError{Stage: bpperrors.StageFetch, BenefitID: "42",
			Err: &bpperrors.UpstreamFetchError{Err: bpperrors.ErrBenefitNotFound}}, http.StatusInternalServerError, InitErr},
		{"InitAtMap", &bpperrors.InitializationError{Stage: bpperrors.StageMap, Err: &bpperrors.InvalidInputError{Msg: "bad date"}},
			http.StatusInternalServerError, InitErr},
		{"Wrapped", pkgerrors.Wrap(&bpperrors.UnsupportedDomainError{}, "search"), http.StatusBadRequest, "Invalid domain provided"},
		{"Unknown", fmt.Errorf("boom"), http.StatusInternalServerError, InternalErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := StatusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/benefits/init", nil)

	WriteError(context.Background(), rr, req, &bpperrors.InitializationError{
		Stage: bpperrors.StageSplice, BenefitID: "42", Err: errors.New("mapped provider has no items"),
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, ErrorResponse{StatusCode: 500, Message: "Failed to initialize benefit", Error: "Internal Server Error"}, body)
	assert.NotContains(t, rr.Body.String(), "mapped provider")
}

func TestWrite(t *testing.T) {
	rr := httptest.NewRecorder()
	Write(rr, httptest.NewRequest(http.MethodPost, "/", nil), http.StatusBadRequest, BadRequestErr)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"statusCode":400,"message":"Bad Request","error":"Bad Request"}`, rr.Body.String())
}
