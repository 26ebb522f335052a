package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pborman/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewTransactionID(t *testing.T) {
	var seen string
	handler := NewTransactionID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetTransactionID(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotNil(t, uuid.Parse(seen))
	assert.Equal(t, seen, rr.Header().Get(TransactionHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TransactionHeader, "caller-id")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "caller-id", seen)
	assert.Equal(t, "caller-id", rr.Header().Get(TransactionHeader))
}

func TestGetTransactionIDMissing(t *testing.T) {
	assert.Empty(t, GetTransactionID(context.Background()))
}
