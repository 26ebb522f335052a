package responseutils

import (
	"context"
	goerrors "errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	bpperrors "github.com/benefits-network/benefits-bpp/bpp/errors"
	"github.com/benefits-network/benefits-bpp/log"
)

const (
	InternalErr   = "Internal Server Error"
	InitErr       = "Failed to initialize benefit"
	NotFoundErr   = "Benefit not found"
	UpstreamErr   = "Failed to fetch benefits"
	BadRequestErr = "Bad Request"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

// StatusFor maps err to the status code and message returned to the caller. Details of
// server side failures are never part of the message.
func StatusFor(err error) (int, string) {
	var (
		invalidInput *bpperrors.InvalidInputError
		requester    *bpperrors.InvalidRequesterIdentityError
		domain       *bpperrors.UnsupportedDomainError
		initErr      *bpperrors.InitializationError
		upstream     *bpperrors.UpstreamFetchError
	)

	switch {
	case goerrors.As(err, &initErr):
		return http.StatusInternalServerError, InitErr
	case goerrors.As(err, &requester):
		return http.StatusBadRequest, requester.Error()
	case goerrors.As(err, &domain):
		return http.StatusBadRequest, domain.Error()
	case goerrors.Is(err, bpperrors.ErrBenefitNotFound):
		return http.StatusNotFound, NotFoundErr
	case goerrors.As(err, &invalidInput):
		return http.StatusBadRequest, invalidInput.Error()
	case goerrors.As(err, &upstream):
		return http.StatusInternalServerError, UpstreamErr
	default:
		return http.StatusInternalServerError, InternalErr
	}
}

// WriteError logs err against the request logger and writes the mapped error response.
func WriteError(ctx context.Context, w http.ResponseWriter, r *http.Request, err error) {
	statusCode, msg := StatusFor(err)

	fields := logrus.Fields{"resp_status": statusCode}
	if statusCode >= http.StatusInternalServerError {
		log.WriteErrorWithFields(ctx, err.Error(), fields)
	} else {
		log.WriteWarnWithFields(ctx, err.Error(), fields)
	}

	Write(w, r, statusCode, msg)
}

// Write writes an error body with the given status code and message.
func Write(w http.ResponseWriter, r *http.Request, statusCode int, msg string) {
	render.Status(r, statusCode)
	render.JSON(w, r, ErrorResponse{
		StatusCode: statusCode,
		Message:    msg,
		Error:      http.StatusText(statusCode),
	})
}
