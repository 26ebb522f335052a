package service

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/benefits-network/benefits-bpp/bpp/catalog"
	"github.com/benefits-network/benefits-bpp/bpp/client"
	"github.com/benefits-network/benefits-bpp/bpp/constants"
	bpperrors "github.com/benefits-network/benefits-bpp/bpp/errors"
	"github.com/benefits-network/benefits-bpp/bpp/models"
	"github.com/benefits-network/benefits-bpp/log"
)

const (
	defaultPage     = "1"
	defaultPageSize = "100"
	defaultSort     = "createdAt:desc"
	defaultLocale   = "en"

	storeSource = "application store"
)

// Ensure service satisfies the interface
var _ Service = &service{}

// Service answers the protocol actions and the listing path.
type Service interface {
	// Search maps every benefit for a finance domain search.
	Search(ctx context.Context, req models.SearchRequest) (*models.OnActionResponse, error)

	// Select maps the benefit named by message.order.items[0].id.
	Select(ctx context.Context, req models.SelectRequest) (*models.OnActionResponse, error)

	// Init maps the selected benefit, attaches the application form to it and
	// returns the request's order rewritten with the unified provider.
	// Pipeline failures are returned as *errors.InitializationError.
	Init(ctx context.Context, req models.InitRequest) (*models.InitRequest, error)

	// ListBenefits returns the content manager listing with application counts
	// attached to every result.
	ListBenefits(ctx context.Context, params models.ListBenefitsParams, authorization string) (json.RawMessage, error)

	GetBenefit(ctx context.Context, id string) (json.RawMessage, error)
}

type service struct {
	content    client.ContentClient
	repository models.Repository

	contexts *catalog.ContextBuilder
	mapper   *catalog.Mapper

	providerUIURL         string
	preserveTransactionID bool
}

// NewService returns a Service. repository may be nil when no application store is
// configured; the listing path then fails. observer may be nil.
func NewService(cfg *Config, content client.ContentClient, repository models.Repository, observer catalog.MappingObserver) Service {
	contexts := catalog.NewContextBuilder(cfg.BppID, cfg.BppURI)
	return &service{
		content:               content,
		repository:            repository,
		contexts:              contexts,
		mapper:                catalog.NewMapper(contexts, observer),
		providerUIURL:         strings.TrimRight(cfg.ProviderUIURL, "/"),
		preserveTransactionID: cfg.PreserveTransactionID,
	}
}

func (s *service) Search(ctx context.Context, req models.SearchRequest) (*models.OnActionResponse, error) {
	if req.Context.Domain != constants.FinanceDomain {
		return nil, &bpperrors.UnsupportedDomainError{Domain: req.Context.Domain}
	}
	if err := validateRequester(req.Context); err != nil {
		return nil, err
	}

	raw, err := s.content.GetBenefits(ctx)
	if err != nil {
		return nil, err
	}

	records, err := catalog.DecodeRecords(raw)
	if err != nil {
		return nil, err
	}

	return s.respond(ctx, records, constants.OnSearch, req.Context)
}

func (s *service) Select(ctx context.Context, req models.SelectRequest) (*models.OnActionResponse, error) {
	if err := validateRequester(req.Context); err != nil {
		return nil, err
	}

	benefitID, err := selectedBenefit(req.Message)
	if err != nil {
		return nil, err
	}

	raw, err := s.content.GetBenefit(ctx, benefitID)
	if err != nil {
		return nil, err
	}

	record, err := catalog.DecodeRecord(raw)
	if err != nil {
		return nil, err
	}

	return s.respond(ctx, []models.BenefitRecord{record}, constants.OnSelect, req.Context)
}

func (s *service) Init(ctx context.Context, req models.InitRequest) (*models.InitRequest, error) {
	if err := validateRequester(req.Context); err != nil {
		return nil, err
	}

	benefitID, err := selectedBenefit(req.Message)
	if err != nil {
		return nil, s.initFailed(ctx, bpperrors.StageFetch, "", err)
	}

	raw, err := s.content.GetBenefit(ctx, benefitID)
	if err != nil {
		return nil, s.initFailed(ctx, bpperrors.StageFetch, benefitID, err)
	}

	record, err := catalog.DecodeRecord(raw)
	if err != nil {
		return nil, s.initFailed(ctx, bpperrors.StageMap, benefitID, err)
	}

	mapped, err := s.respond(ctx, []models.BenefitRecord{record}, constants.OnInit, req.Context)
	if err != nil {
		return nil, s.initFailed(ctx, bpperrors.StageMap, benefitID, err)
	}

	resp, err := splice(req, mapped, s.applicationForm(benefitID))
	if err != nil {
		return nil, s.initFailed(ctx, bpperrors.StageSplice, benefitID, err)
	}

	return resp, nil
}

func (s *service) ListBenefits(ctx context.Context, params models.ListBenefitsParams, authorization string) (json.RawMessage, error) {
	filters := params.Filters
	if filters == nil {
		filters = map[string]interface{}{}
	}

	query := client.EncodeQuery([]client.QueryParam{
		{Key: "page", Value: orDefault(params.Page.String(), defaultPage)},
		{Key: "pageSize", Value: orDefault(params.PageSize.String(), defaultPageSize)},
		{Key: "sort", Value: orDefault(params.Sort, defaultSort)},
		{Key: "locale", Value: orDefault(params.Locale, defaultLocale)},
		{Key: "filters", Value: filters},
	})

	body, err := s.content.ListBenefits(ctx, query, authorization)
	if err != nil {
		return nil, err
	}

	return s.withApplicationDetails(ctx, body)
}

func (s *service) GetBenefit(ctx context.Context, id string) (json.RawMessage, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &bpperrors.InvalidInputError{Msg: "benefit id is required"}
	}
	return s.content.GetBenefit(ctx, id)
}

// withApplicationDetails adds application_details to every listing result. A listing
// without results is returned untouched.
func (s *service) withApplicationDetails(ctx context.Context, body []byte) (json.RawMessage, error) {
	results := gjson.GetBytes(body, "results")
	if !results.IsArray() || len(results.Array()) == 0 {
		return body, nil
	}

	var ids []string
	for i, result := range results.Array() {
		if !result.IsObject() {
			return nil, &bpperrors.UpstreamFetchError{Source: client.EndpointListing, Err: errors.Errorf("listing result %d is not an object", i)}
		}
		ids = append(ids, result.Get("id").String())
	}

	if s.repository == nil {
		return nil, &bpperrors.UpstreamFetchError{Source: storeSource, Err: errors.New("no application store is configured")}
	}

	stats, err := s.repository.GetApplicationStats(ctx, ids)
	if err != nil {
		return nil, &bpperrors.UpstreamFetchError{Source: storeSource, Err: err}
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &bpperrors.UpstreamFetchError{Source: client.EndpointListing, Err: err}
	}

	var entries []map[string]json.RawMessage
	if err := json.Unmarshal(envelope["results"], &entries); err != nil {
		return nil, &bpperrors.UpstreamFetchError{Source: client.EndpointListing, Err: errors.Wrap(err, "results are not objects")}
	}

	for i, entry := range entries {
		details, err := json.Marshal(stats[ids[i]])
		if err != nil {
			return nil, err
		}
		entry["application_details"] = details
	}

	if envelope["results"], err = json.Marshal(entries); err != nil {
		return nil, err
	}
	return json.Marshal(envelope)
}

// respond maps records under a context for action. The requester's transaction
// id is kept when so configured.
func (s *service) respond(ctx context.Context, records []models.BenefitRecord, action string, reqCtx models.Context) (*models.OnActionResponse, error) {
	var (
		c   models.Context
		err error
	)
	if s.preserveTransactionID {
		c, err = s.contexts.BuildContinuing(action, reqCtx.Requester(), reqCtx.TransactionID)
	} else {
		c, err = s.contexts.Build(action, reqCtx.Requester())
	}
	if err != nil {
		return nil, err
	}

	return s.mapper.MapWithContext(ctx, records, c)
}

func (s *service) applicationForm(benefitID string) models.XInput {
	return models.XInput{
		Head: models.XInputHead{
			Descriptor: models.Descriptor{Name: "Application Form"},
			Index:      models.XInputIndex{Min: 0, Cur: 0, Max: 1},
			Headings:   []string{"Personal Details"},
		},
		Form: models.XInputForm{
			URL:      s.providerUIURL + "/benefit/apply/" + url.PathEscape(benefitID),
			MimeType: "text/html",
			Resubmit: false,
		},
		Required: true,
	}
}

func (s *service) initFailed(ctx context.Context, stage bpperrors.InitStage, benefitID string, err error) error {
	log.WriteErrorWithFields(ctx, "Failed to initialize benefit", logrus.Fields{
		"stage":      stage,
		"benefit_id": benefitID,
		"error":      err.Error(),
	})
	return &bpperrors.InitializationError{Stage: stage, BenefitID: benefitID, Err: err}
}

// splice puts the application form on the first mapped item and rewrites the
// request's order to carry the unified provider and the mapped items.
func splice(req models.InitRequest, mapped *models.OnActionResponse, form models.XInput) (*models.InitRequest, error) {
	if len(mapped.Message.Catalog.Providers) == 0 {
		return nil, errors.New("mapped catalog has no provider")
	}
	provider := mapped.Message.Catalog.Providers[0]
	if len(provider.Items) == 0 {
		return nil, errors.New("mapped provider has no items")
	}

	items := make([]models.CatalogItem, len(provider.Items))
	copy(items, provider.Items)
	items[0].XInput = &form

	order := req.Message.Order
	order.Providers = []models.Provider{{
		ID:         provider.ID,
		Descriptor: provider.Descriptor,
		Rateable:   provider.Rateable,
		Locations:  provider.Locations,
		Categories: provider.Categories,
	}}
	order.Items = items

	// The mapped context is laid over the request's.
	c := mapped.Context
	if c.Location == nil {
		c.Location = req.Context.Location
	}
	c.Extra = req.Context.Extra
	c.Action = constants.OnInit

	return &models.InitRequest{
		Context: c,
		Message: models.OrderMessage{Order: order},
	}, nil
}

func validateRequester(c models.Context) error {
	if !c.Requester().Valid() {
		return &bpperrors.InvalidRequesterIdentityError{BapID: c.BapID, BapURI: c.BapURI}
	}
	return nil
}

func selectedBenefit(m models.OrderMessage) (string, error) {
	id, ok := m.FirstItemID()
	if !ok {
		return "", &bpperrors.InvalidInputError{Msg: "message.order.items[0].id is required"}
	}
	return id, nil
}

func orDefault(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
