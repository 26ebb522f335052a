package constants

// This is set during compilation.
var Version = "latest"

// Protocol envelope values.
const (
	Domain          = "onest:financial-support"
	ProtocolVer     = "1.1.0"
	TTL             = "PT10M"
	FinanceDomain   = "finance"
	CurrencyINR     = "INR"
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

// Protocol actions answered by this provider.
const (
	OnSearch = "on_search"
	OnSelect = "on_select"
	OnInit   = "on_init"
)

// Unified provider identity.
const (
	CatalogName         = "Protean DSEP Scholarships and Grants BPP Platform"
	ProviderID          = "PROVIDER_UNIFIED"
	UnknownProviderName = "Unknown Provider"
	ProviderShortDesc   = "Multiple scholarships offered"
	CategoryID          = "CAT_SCHOLARSHIP"
	CategoryCode        = "scholarship"
	CategoryName        = "Scholarship"
	FulfillmentID       = "FULFILL_UNIFIED"
	LocationID          = "L1"
)

// Application statuses counted for the listing path.
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)
