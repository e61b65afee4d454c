package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	apperrors "lilo/pkg/errors"
	"lilo/pkg/logger"
)

const (
	OperatorIDHeader  = "X-Operator-ID"
	DefaultOperatorID = "operator"
)

// Operator is the authenticated back-office session attached to a request.
type Operator struct {
	ID string
}

func OperatorFrom(ctx context.Context) (Operator, bool) {
	op, ok := ctx.Value(OperatorKey).(Operator)
	return op, ok
}

func WithOperator(ctx context.Context, op Operator) context.Context {
	return context.WithValue(ctx, OperatorKey, op)
}

// RequireOperator guards an operator route with a bearer API key.
// An empty apiKey rejects every request.
func RequireOperator(apiKey string, log *logger.Logger) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			token, ok := bearerToken(r)
			if !ok || apiKey == "" || subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
				log.Warn("Operator authentication failed",
					"request_id", RequestIDFrom(r.Context()),
					"path", r.URL.Path,
					"client_ip", ClientIP(r),
				)
				reject(w, apperrors.Unauthorized("Operator credentials required"))
				return
			}

			id := strings.TrimSpace(r.Header.Get(OperatorIDHeader))
			if id == "" {
				id = DefaultOperatorID
			}
			next(w, r.WithContext(WithOperator(r.Context(), Operator{ID: id})), ps)
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
