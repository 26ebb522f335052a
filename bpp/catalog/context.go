package catalog

import (
	"strings"
	"time"

	"github.com/pborman/uuid"

	"github.com/benefits-network/benefits-bpp/bpp/constants"
	bpperrors "github.com/benefits-network/benefits-bpp/bpp/errors"
	"github.com/benefits-network/benefits-bpp/bpp/models"
)

// ContextBuilder creates the protocol envelope for a response. It holds only this
// provider's identity; the requester identity is supplied on every call.
type ContextBuilder struct {
	bppID  string
	bppURI string

	now   func() time.Time
	newID func() string
}

func NewContextBuilder(bppID, bppURI string) *ContextBuilder {
	return &ContextBuilder{
		bppID:  bppID,
		bppURI: bppURI,
		now:    time.Now,
		newID:  uuid.New,
	}
}

// Build returns a context with a fresh transaction id and message id.
func (b *ContextBuilder) Build(action string, id models.RequesterIdentity) (models.Context, error) {
	return b.build(action, id, "")
}

// BuildContinuing keeps the caller's transaction id and mints a new message id.
// A blank transaction id behaves like Build.
func (b *ContextBuilder) BuildContinuing(action string, id models.RequesterIdentity, transactionID string) (models.Context, error) {
	return b.build(action, id, strings.TrimSpace(transactionID))
}

func (b *ContextBuilder) build(action string, id models.RequesterIdentity, transactionID string) (models.Context, error) {
	if !id.Valid() {
		return models.Context{}, &bpperrors.InvalidRequesterIdentityError{BapID: id.BapID, BapURI: id.BapURI}
	}

	if transactionID == "" {
		transactionID = b.newID()
	}

	return models.Context{
		Domain:        constants.Domain,
		Action:        action,
		Version:       constants.ProtocolVer,
		BapID:         id.BapID,
		BapURI:        id.BapURI,
		BppID:         b.bppID,
		BppURI:        b.bppURI,
		TransactionID: transactionID,
		MessageID:     b.newID(),
		Timestamp:     b.now().UTC().Format(constants.TimestampLayout),
		TTL:           constants.TTL,
	}, nil
}
