package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/pborman/uuid"
)

// type to create context.Context key
type CtxTransactionKeyType string

// context.Context key to get the transaction ID from the request context
const CtxTransactionKey CtxTransactionKeyType = "ctxTransaction"

// TransactionHeader carries the transaction ID in both directions.
const TransactionHeader = "X-Request-Id"

// NewTransactionID stores the caller's X-Request-Id, or a fresh one, in the request
// context and echoes it on the response.
func NewTransactionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(TransactionHeader))
		if id == "" {
			id = uuid.New()
		}
		w.Header().Set(TransactionHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), CtxTransactionKey, id))
		next.ServeHTTP(w, r)
	})
}

// GetTransactionID returns the transaction ID stored by NewTransactionID.
func GetTransactionID(ctx context.Context) string {
	id, _ := ctx.Value(CtxTransactionKey).(string)
	return id
}
