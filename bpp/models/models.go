package models

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
)

// BenefitRecord is a benefit (scholarship or grant) as stored in the content repository.
// Nested collections are nil when the repository did not populate them and
// pointers are nil when the value is absent.
type BenefitRecord struct {
	ID                   int           `json:"id"`
	DocumentID           string        `json:"documentId"`
	Title                string        `json:"title"`
	LongDescription      string        `json:"longDescription,omitempty"`
	ApplicationOpenDate  *string       `json:"applicationOpenDate,omitempty"`
	ApplicationCloseDate *string       `json:"applicationCloseDate,omitempty"`
	ImageURL             *string       `json:"imageUrl,omitempty"`
	Eligibility          []Eligibility `json:"eligibility,omitempty"`
	Documents            []Document    `json:"documents,omitempty"`
	Benefits             []BenefitLine `json:"benefits,omitempty"`
	Exclusions           []Exclusion   `json:"exclusions,omitempty"`
	SponsoringEntities   []Entity      `json:"sponsoringEntities,omitempty"`
	ProvidingEntity      *Entity       `json:"providingEntity,omitempty"`
	ApplicationForm      []FormField   `json:"applicationForm,omitempty"`
}

// ProviderName returns the providing entity's name if there is one.
func (b BenefitRecord) ProviderName() (string, bool) {
	if b.ProvidingEntity == nil || b.ProvidingEntity.Name == "" {
		return "", false
	}
	return b.ProvidingEntity.Name, true
}

// Nested elements only hold the fields the catalog reads. Those are taken
// leniently from the source element, which is kept whole as raw and written
// back verbatim, so an unexpected shape in any other field never fails a decode.

type Eligibility struct {
	Type        string `json:"type"`
	Evidence    string `json:"evidence"`
	Description string `json:"description,omitempty"`

	raw json.RawMessage
}

func (e *Eligibility) UnmarshalJSON(data []byte) error {
	el, raw, err := element(data)
	if err != nil {
		return err
	}
	*e = Eligibility{
		Type:        el.Get("type").String(),
		Evidence:    el.Get("evidence").String(),
		Description: el.Get("description").String(),
		raw:         raw,
	}
	return nil
}

func (e Eligibility) Serialize() (string, error) {
	type plain Eligibility
	return serialize(e.raw, plain(e))
}

type Document struct {
	DocumentType string `json:"documentType,omitempty"`
	IsRequired   bool   `json:"isRequired"`

	raw json.RawMessage
}

func (d *Document) UnmarshalJSON(data []byte) error {
	el, raw, err := element(data)
	if err != nil {
		return err
	}
	*d = Document{
		DocumentType: el.Get("documentType").String(),
		IsRequired:   el.Get("isRequired").Bool(),
		raw:          raw,
	}
	return nil
}

func (d Document) Serialize() (string, error) {
	type plain Document
	return serialize(d.raw, plain(d))
}

// BenefitLine is one financial or non-monetary benefit. The description is free text that may
// carry rupee amounts.
type BenefitLine struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	raw json.RawMessage
}

func (b *BenefitLine) UnmarshalJSON(data []byte) error {
	el, raw, err := element(data)
	if err != nil {
		return err
	}
	*b = BenefitLine{
		Title:       el.Get("title").String(),
		Description: el.Get("description").String(),
		raw:         raw,
	}
	return nil
}

func (b BenefitLine) Serialize() (string, error) {
	type plain BenefitLine
	return serialize(b.raw, plain(b))
}

type Exclusion struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`

	raw json.RawMessage
}

func (e *Exclusion) UnmarshalJSON(data []byte) error {
	el, raw, err := element(data)
	if err != nil {
		return err
	}
	*e = Exclusion{
		Type:        el.Get("type").String(),
		Description: el.Get("description").String(),
		raw:         raw,
	}
	return nil
}

func (e Exclusion) Serialize() (string, error) {
	type plain Exclusion
	return serialize(e.raw, plain(e))
}

// Entity is a sponsoring or providing organisation.
type Entity struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`

	raw json.RawMessage
}

func (e *Entity) UnmarshalJSON(data []byte) error {
	el, raw, err := element(data)
	if err != nil {
		return err
	}
	*e = Entity{
		Name: el.Get("name").String(),
		Type: el.Get("type").String(),
		raw:  raw,
	}
	return nil
}

func (e Entity) Serialize() (string, error) {
	type plain Entity
	return serialize(e.raw, plain(e))
}

type FormField struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`

	raw json.RawMessage
}

func (f *FormField) UnmarshalJSON(data []byte) error {
	el, raw, err := element(data)
	if err != nil {
		return err
	}
	*f = FormField{
		Type:  el.Get("type").String(),
		Name:  el.Get("name").String(),
		Label: el.Get("label").String(),
		raw:   raw,
	}
	return nil
}

func (f FormField) Serialize() (string, error) {
	type plain FormField
	return serialize(f.raw, plain(f))
}

// element compacts data and returns it with a gjson view over it.
func element(data []byte) (gjson.Result, json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return gjson.Result{}, nil, err
	}
	raw := json.RawMessage(buf.Bytes())
	return gjson.ParseBytes(raw), raw, nil
}

func serialize(raw json.RawMessage, v interface{}) (string, error) {
	if len(raw) > 0 {
		return string(raw), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ApplicationStats summarises the applications made against one benefit.
type ApplicationStats struct {
	ApplicationsCount         int `json:"applications_count"`
	PendingApplicationsCount  int `json:"pending_applications_count"`
	ApprovedApplicationsCount int `json:"approved_applications_count"`
	RejectedApplicationsCount int `json:"rejected_applications_count"`
}

// ListBenefitsParams are the pagination and filter options of the listing path.
type ListBenefitsParams struct {
	Page     json.Number            `json:"page,omitempty"`
	PageSize json.Number            `json:"pageSize,omitempty"`
	Sort     string                 `json:"sort,omitempty"`
	Locale   string                 `json:"locale,omitempty"`
	Filters  map[string]interface{} `json:"filters,omitempty"`
}
