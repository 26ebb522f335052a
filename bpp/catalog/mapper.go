package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/benefits-network/benefits-bpp/bpp/constants"
	bpperrors "github.com/benefits-network/benefits-bpp/bpp/errors"
	"github.com/benefits-network/benefits-bpp/bpp/models"
)

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02"}

// MappingObserver receives the time spent mapping a set of records.
type MappingObserver interface {
	ObserveMapping(action string, records int, elapsed time.Duration)
}

// Mapper turns benefit records into a catalog with a single unified provider.
type Mapper struct {
	contexts *ContextBuilder
	observer MappingObserver
}

// NewMapper returns a Mapper. observer may be nil.
func NewMapper(contexts *ContextBuilder, observer MappingObserver) *Mapper {
	return &Mapper{contexts: contexts, observer: observer}
}

// Map builds a fresh context for action and maps records under it.
func (m *Mapper) Map(ctx context.Context, records []models.BenefitRecord, action string, id models.RequesterIdentity) (*models.OnActionResponse, error) {
	c, err := m.contexts.Build(action, id)
	if err != nil {
		return nil, err
	}
	return m.MapWithContext(ctx, records, c)
}

// MapRaw decodes the repository's data payload and maps it like Map.
func (m *Mapper) MapRaw(ctx context.Context, raw json.RawMessage, action string, id models.RequesterIdentity) (*models.OnActionResponse, error) {
	records, err := DecodeRecords(raw)
	if err != nil {
		return nil, err
	}
	return m.Map(ctx, records, action, id)
}

// MapWithContext maps records and wraps them with an already built context.
func (m *Mapper) MapWithContext(ctx context.Context, records []models.BenefitRecord, c models.Context) (*models.OnActionResponse, error) {
	start := time.Now()

	cat, err := m.Catalog(ctx, records)
	if err != nil {
		return nil, err
	}

	if m.observer != nil {
		m.observer.ObserveMapping(c.Action, len(records), time.Since(start))
	}

	return &models.OnActionResponse{
		Context: c,
		Message: models.CatalogMessage{Catalog: cat},
	}, nil
}

// Catalog maps every record concurrently. Items keep the order of records.
func (m *Mapper) Catalog(ctx context.Context, records []models.BenefitRecord) (models.Catalog, error) {
	items := make([]models.CatalogItem, len(records))

	g, ctx := errgroup.WithContext(ctx)
	for i := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := catalogItem(records[i])
			if err != nil {
				return err
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.Catalog{}, err
	}

	return models.Catalog{
		Descriptor: models.Descriptor{Name: constants.CatalogName},
		Providers:  []models.Provider{unifiedProvider(records, items)},
	}, nil
}

// DecodeRecords decodes a JSON array of benefit records.
func DecodeRecords(raw json.RawMessage) ([]models.BenefitRecord, error) {
	if !gjson.ParseBytes(raw).IsArray() {
		return nil, &bpperrors.InvalidInputError{Msg: "expected an array of benefits"}
	}

	var records []models.BenefitRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &bpperrors.InvalidInputError{Msg: "failed to decode benefits", Err: err}
	}
	return records, nil
}

// DecodeRecord decodes a single benefit record.
func DecodeRecord(raw json.RawMessage) (models.BenefitRecord, error) {
	if !gjson.ParseBytes(raw).IsObject() {
		return models.BenefitRecord{}, &bpperrors.InvalidInputError{Msg: "expected a benefit object"}
	}

	var record models.BenefitRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return models.BenefitRecord{}, &bpperrors.InvalidInputError{Msg: "failed to decode benefit", Err: err}
	}
	return record, nil
}

func catalogItem(rec models.BenefitRecord) (models.CatalogItem, error) {
	var (
		groups [6]*models.TagGroup
		price  string
		g      errgroup.Group
	)

	g.Go(func() (err error) {
		groups[0], err = EligibilityTags(rec.Eligibility)
		return
	})
	g.Go(func() (err error) {
		groups[1], err = DocumentTags(rec.Documents)
		return
	})
	g.Go(func() (err error) {
		groups[2], err = BenefitTags(rec.Benefits)
		return
	})
	g.Go(func() (err error) {
		groups[3], err = ExclusionTags(rec.Exclusions)
		return
	})
	g.Go(func() (err error) {
		groups[4], err = SponsoringEntityTags(rec.SponsoringEntities)
		return
	})
	g.Go(func() (err error) {
		groups[5], err = ApplicationFormTags(rec.ApplicationForm)
		return
	})
	g.Go(func() (err error) {
		price, err = TotalBenefitValue(rec.Benefits)
		return
	})
	if err := g.Wait(); err != nil {
		return models.CatalogItem{}, err
	}

	itemTime, err := applicationWindow(rec)
	if err != nil {
		return models.CatalogItem{}, err
	}

	tags := make([]models.TagGroup, 0, len(groups))
	for _, group := range groups {
		if group != nil {
			tags = append(tags, *group)
		}
	}

	rateable := false
	return models.CatalogItem{
		ID:         rec.DocumentID,
		Descriptor: &models.Descriptor{Name: rec.Title, LongDesc: rec.LongDescription},
		Price:      &models.Price{Currency: constants.CurrencyINR, Value: price},
		Time:       itemTime,
		Rateable:   &rateable,
		Tags:       tags,
	}, nil
}

// applicationWindow returns nil when neither date is set.
func applicationWindow(rec models.BenefitRecord) (*models.ItemTime, error) {
	start, err := formatDate("applicationOpenDate", rec.ApplicationOpenDate)
	if err != nil {
		return nil, err
	}
	end, err := formatDate("applicationCloseDate", rec.ApplicationCloseDate)
	if err != nil {
		return nil, err
	}
	if start == "" && end == "" {
		return nil, nil
	}
	return &models.ItemTime{Range: models.TimeRange{Start: start, End: end}}, nil
}

func formatDate(field string, value *string) (string, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return "", nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(*value)); err == nil {
			return t.UTC().Format(constants.TimestampLayout), nil
		}
	}
	return "", &bpperrors.InvalidInputError{Msg: fmt.Sprintf("%s %q is not a valid date", field, *value)}
}

func unifiedProvider(records []models.BenefitRecord, items []models.CatalogItem) models.Provider {
	descriptor := models.ProviderDescriptor{
		Name:      constants.UnknownProviderName,
		ShortDesc: constants.ProviderShortDesc,
		Images:    []models.Image{},
	}
	if len(records) > 0 {
		if name, ok := records[0].ProviderName(); ok {
			descriptor.Name = name
		}
		if url := records[0].ImageURL; url != nil && *url != "" {
			descriptor.Images = append(descriptor.Images, models.Image{URL: *url})
		}
	}

	return models.Provider{
		ID:         constants.ProviderID,
		Descriptor: descriptor,
		Categories: []models.Category{{
			ID:         constants.CategoryID,
			Descriptor: models.Descriptor{Code: constants.CategoryCode, Name: constants.CategoryName},
		}},
		Fulfillments: []models.Fulfillment{{ID: constants.FulfillmentID, Tracking: false}},
		Locations: []models.Location{{
			ID:    constants.LocationID,
			City:  models.CodedName{Name: "Pune", Code: "std:020"},
			State: models.CodedName{Name: "Maharashtra", Code: "MH"},
		}},
		Items: items,
	}
}
