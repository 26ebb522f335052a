package models

import (
	"encoding/json"
	"strings"
)

// RequesterIdentity identifies the network participant (BAP) that issued a request.
type RequesterIdentity struct {
	BapID  string
	BapURI string
}

// Valid reports whether both identifiers are present.
func (r RequesterIdentity) Valid() bool {
	return strings.TrimSpace(r.BapID) != "" && strings.TrimSpace(r.BapURI) != ""
}

// Context is the protocol envelope sent with every message.
type Context struct {
	Domain        string          `json:"domain"`
	Action        string          `json:"action"`
	Version       string          `json:"version"`
	BapID         string          `json:"bap_id"`
	BapURI        string          `json:"bap_uri"`
	BppID         string          `json:"bpp_id"`
	BppURI        string          `json:"bpp_uri"`
	TransactionID string          `json:"transaction_id"`
	MessageID     string          `json:"message_id"`
	Timestamp     string          `json:"timestamp"`
	TTL           string          `json:"ttl"`
	Location      json.RawMessage `json:"location,omitempty"`

	// Extra holds request fields not modelled above, such as key or city.
	Extra map[string]json.RawMessage `json:"-"`
}

func (c *Context) UnmarshalJSON(data []byte) error {
	type plain Context
	if err := json.Unmarshal(data, (*plain)(c)); err != nil {
		return err
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for _, key := range contextKeys {
		delete(fields, key)
	}
	c.Extra = nil
	if len(fields) > 0 {
		c.Extra = fields
	}
	return nil
}

// MarshalJSON writes Extra underneath the modelled fields, which win on a clash.
func (c Context) MarshalJSON() ([]byte, error) {
	type plain Context
	b, err := json.Marshal(plain(c))
	if err != nil || len(c.Extra) == 0 {
		return b, err
	}

	fields := make(map[string]json.RawMessage, len(c.Extra)+len(contextKeys))
	for k, v := range c.Extra {
		fields[k] = v
	}
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

var contextKeys = []string{
	"domain", "action", "version", "bap_id", "bap_uri", "bpp_id", "bpp_uri",
	"transaction_id", "message_id", "timestamp", "ttl", "location",
}

func (c Context) Requester() RequesterIdentity {
	return RequesterIdentity{BapID: c.BapID, BapURI: c.BapURI}
}

type Descriptor struct {
	Code      string `json:"code,omitempty"`
	Name      string `json:"name,omitempty"`
	ShortDesc string `json:"short_desc,omitempty"`
	LongDesc  string `json:"long_desc,omitempty"`
}

type Image struct {
	URL string `json:"url"`
}

// ProviderDescriptor always renders images, even when there are none.
type ProviderDescriptor struct {
	Name      string  `json:"name"`
	ShortDesc string  `json:"short_desc"`
	Images    []Image `json:"images"`
}

type TagGroup struct {
	Display    bool       `json:"display"`
	Descriptor Descriptor `json:"descriptor"`
	List       []TagItem  `json:"list"`
}

// TagItem carries one nested element of a benefit. Value is the element's JSON text.
type TagItem struct {
	Descriptor Descriptor `json:"descriptor"`
	Value      string     `json:"value"`
	Display    bool       `json:"display"`
}

type Price struct {
	Currency string `json:"currency"`
	Value    string `json:"value"`
}

type TimeRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

type ItemTime struct {
	Range TimeRange `json:"range"`
}

// CatalogItem is one benefit as offered on the network. Items received in
// select and init requests usually carry only the id.
type CatalogItem struct {
	ID         string      `json:"id"`
	Descriptor *Descriptor `json:"descriptor,omitempty"`
	Price      *Price      `json:"price,omitempty"`
	Time       *ItemTime   `json:"time,omitempty"`
	Rateable   *bool       `json:"rateable,omitempty"`
	Tags       []TagGroup  `json:"tags,omitempty"`
	XInput     *XInput     `json:"xinput,omitempty"`
}

type XInput struct {
	Head     XInputHead `json:"head"`
	Form     XInputForm `json:"form"`
	Required bool       `json:"required"`
}

type XInputHead struct {
	Descriptor Descriptor  `json:"descriptor"`
	Index      XInputIndex `json:"index"`
	Headings   []string    `json:"headings"`
}

type XInputIndex struct {
	Min int `json:"min"`
	Cur int `json:"cur"`
	Max int `json:"max"`
}

type XInputForm struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Resubmit bool   `json:"resubmit"`
}

type Category struct {
	ID         string     `json:"id"`
	Descriptor Descriptor `json:"descriptor"`
}

type Fulfillment struct {
	ID       string `json:"id"`
	Tracking bool   `json:"tracking"`
}

type CodedName struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type Location struct {
	ID    string    `json:"id"`
	City  CodedName `json:"city"`
	State CodedName `json:"state"`
}

type Provider struct {
	ID           string             `json:"id"`
	Descriptor   ProviderDescriptor `json:"descriptor"`
	Rateable     *bool              `json:"rateable,omitempty"`
	Categories   []Category         `json:"categories,omitempty"`
	Fulfillments []Fulfillment      `json:"fulfillments,omitempty"`
	Locations    []Location         `json:"locations,omitempty"`
	Items        []CatalogItem      `json:"items,omitempty"`
}

type Catalog struct {
	Descriptor Descriptor `json:"descriptor"`
	Providers  []Provider `json:"providers"`
}

type CatalogMessage struct {
	Catalog Catalog `json:"catalog"`
}

// OnActionResponse is the catalog message returned for on_search, on_select and on_init.
type OnActionResponse struct {
	Context Context        `json:"context"`
	Message CatalogMessage `json:"message"`
}

type SearchRequest struct {
	Context Context         `json:"context"`
	Message json.RawMessage `json:"message,omitempty"`
}

type OrderMessage struct {
	Order Order `json:"order"`
}

// SelectRequest and InitRequest share a shape: the benefit id travels in message.order.items[0].id.
type SelectRequest struct {
	Context Context      `json:"context"`
	Message OrderMessage `json:"message"`
}

type InitRequest struct {
	Context Context      `json:"context"`
	Message OrderMessage `json:"message"`
}

// FirstItemID returns the id of the first ordered item.
func (m OrderMessage) FirstItemID() (string, bool) {
	if len(m.Order.Items) == 0 || m.Order.Items[0].ID == "" {
		return "", false
	}
	return m.Order.Items[0].ID, true
}

// Order keeps every field it does not model in Extra so that an order can be
// echoed back with only providers and items rewritten.
type Order struct {
	Providers []Provider
	Items     []CatalogItem
	Extra     map[string]json.RawMessage
}

func (o *Order) UnmarshalJSON(data []byte) error {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if v, ok := fields["providers"]; ok {
		if err := json.Unmarshal(v, &o.Providers); err != nil {
			return err
		}
		delete(fields, "providers")
	}
	if v, ok := fields["items"]; ok {
		if err := json.Unmarshal(v, &o.Items); err != nil {
			return err
		}
		delete(fields, "items")
	}

	if len(fields) > 0 {
		o.Extra = fields
	}
	return nil
}

func (o Order) MarshalJSON() ([]byte, error) {
	fields := make(map[string]interface{}, len(o.Extra)+2)
	for k, v := range o.Extra {
		fields[k] = v
	}
	if o.Providers != nil {
		fields["providers"] = o.Providers
	}
	if o.Items != nil {
		fields["items"] = o.Items
	}
	return json.Marshal(fields)
}
