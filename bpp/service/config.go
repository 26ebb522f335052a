package service

import (
	"strings"

	bpperrors "github.com/benefits-network/benefits-bpp/bpp/errors"
	"github.com/benefits-network/benefits-bpp/conf"
)

type Config struct {
	StrapiURL     string `conf:"STRAPI_URL"`
	StrapiToken   string `conf:"STRAPI_TOKEN"`
	ProviderUIURL string `conf:"PROVIDER_UBA_UI_URL"`
	BppID         string `conf:"BPP_ID"`
	BppURI        string `conf:"BPP_URI"`

	// Continue the requester's transaction id instead of minting a new one for every response.
	PreserveTransactionID bool `conf:"BPP_PRESERVE_TRANSACTION_ID" conf_default:"false"`
}

// LoadConfig fails with a MissingConfigurationError naming every required key that is empty.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := conf.Checkout(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"STRAPI_URL", cfg.StrapiURL},
		{"STRAPI_TOKEN", cfg.StrapiToken},
		{"PROVIDER_UBA_UI_URL", cfg.ProviderUIURL},
		{"BPP_ID", cfg.BppID},
		{"BPP_URI", cfg.BppURI},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return &bpperrors.MissingConfigurationError{Keys: missing}
	}
	return nil
}
