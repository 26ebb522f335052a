package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pborman/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	bpperrors "github.com/benefits-network/benefits-bpp/bpp/errors"
	"github.com/benefits-network/benefits-bpp/conf"
	"github.com/benefits-network/benefits-bpp/log"
)

const (
	source          = "content repository"
	requestIDHeader = "X-Request-Id"

	// populate selects every nested relation the catalog mapper reads.
	populate = "?populate[tags]=*" +
		"&populate[benefits][on][benefit.financial-benefit][populate]=*" +
		"&populate[benefits][on][benefit.non-monetary-benefit][populate]=*" +
		"&populate[exclusions]=*" +
		"&populate[references]=*" +
		"&populate[providingEntity][populate][address]=*" +
		"&populate[providingEntity][populate][contactInfo]=*" +
		"&populate[sponsoringEntities][populate][address]=*" +
		"&populate[sponsoringEntities][populate][contactInfo]=*" +
		"&populate[eligibility][populate][criteria]=*" +
		"&populate[documents]=*" +
		"&populate[applicationProcess]=*" +
		"&populate[applicationForm][populate][options]=*"

	listingPath = "/content-manager/collection-types/api::benefit.benefit"
)

// Endpoints used as metric labels.
const (
	EndpointBenefits = "benefits"
	EndpointBenefit  = "benefit"
	EndpointListing  = "listing"
)

// ContentClient reads benefits from the content repository.
type ContentClient interface {
	// GetBenefits returns the data array of the populated benefit collection.
	GetBenefits(ctx context.Context) (json.RawMessage, error)
	// GetBenefit returns the data object of a single populated benefit.
	GetBenefit(ctx context.Context, id string) (json.RawMessage, error)
	// ListBenefits calls the content manager listing with the caller's credentials and
	// returns the body untouched.
	ListBenefits(ctx context.Context, query, authorization string) ([]byte, error)
	Ping(ctx context.Context) error
}

// UpstreamObserver counts content repository responses.
type UpstreamObserver interface {
	IncrementUpstream(endpoint, code string)
}

type Config struct {
	URL       string `conf:"STRAPI_URL"`
	Token     string `conf:"STRAPI_TOKEN"`
	TimeoutMS int    `conf:"STRAPI_TIMEOUT_MS" conf_default:"10000"`
	RetryMax  int    `conf:"STRAPI_RETRY_MAX" conf_default:"0"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := conf.Checkout(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

type StrapiClient struct {
	baseURL    string
	token      string
	httpClient *retryablehttp.Client
	observer   UpstreamObserver
}

// Ensure StrapiClient satisfies the interface
var _ ContentClient = &StrapiClient{}

// NewStrapiClient returns a client for cfg. observer may be nil.
func NewStrapiClient(cfg *Config, observer UpstreamObserver) *StrapiClient {
	hc := retryablehttp.NewClient()
	hc.RetryMax = cfg.RetryMax
	hc.HTTPClient.Timeout = time.Duration(cfg.TimeoutMS) * time.Millisecond
	hc.Logger = nil
	hc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	hc.RequestLogHook = logRequest
	hc.ResponseLogHook = logResponse

	return &StrapiClient{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		token:      cfg.Token,
		httpClient: hc,
		observer:   observer,
	}
}

func (c *StrapiClient) GetBenefits(ctx context.Context) (json.RawMessage, error) {
	body, _, err := c.get(ctx, EndpointBenefits, c.baseURL+"/benefits"+populate, "Bearer "+c.token)
	if err != nil {
		return nil, err
	}
	return data(body)
}

func (c *StrapiClient) GetBenefit(ctx context.Context, id string) (json.RawMessage, error) {
	body, status, err := c.get(ctx, EndpointBenefit, c.baseURL+"/benefits/"+url.PathEscape(id)+populate, "Bearer "+c.token)
	if status == http.StatusNotFound {
		return nil, &bpperrors.UpstreamFetchError{Source: source, StatusCode: status, Err: bpperrors.ErrBenefitNotFound}
	}
	if err != nil {
		return nil, err
	}

	raw, err := data(body)
	if err != nil {
		return nil, err
	}
	if gjson.ParseBytes(raw).Type == gjson.Null {
		return nil, &bpperrors.UpstreamFetchError{Source: source, StatusCode: status, Err: bpperrors.ErrBenefitNotFound}
	}
	return raw, nil
}

func (c *StrapiClient) ListBenefits(ctx context.Context, query, authorization string) ([]byte, error) {
	body, _, err := c.get(ctx, EndpointListing, c.baseURL+listingPath+"?"+query, authorization)
	return body, err
}

// Ping requests a single benefit id to verify the repository is reachable with our token.
func (c *StrapiClient) Ping(ctx context.Context) error {
	_, _, err := c.get(ctx, EndpointBenefits, c.baseURL+"/benefits?fields[0]=id&pagination[pageSize]=1", "Bearer "+c.token)
	return err
}

func (c *StrapiClient) get(ctx context.Context, endpoint, target, authorization string) ([]byte, int, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, &bpperrors.UpstreamFetchError{Source: source, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewRandom().String())
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	resp, err := c.httpClient.Do(req)
	if resp != nil {
		/* #nosec -- it's OK for us to ignore errors when attempt to cleanup response body */
		defer func() {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}()
	}
	if err != nil {
		c.count(endpoint, "error")
		return nil, 0, &bpperrors.UpstreamFetchError{Source: source, Err: err}
	}
	c.count(endpoint, strconv.Itoa(resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &bpperrors.UpstreamFetchError{Source: source, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, resp.StatusCode, &bpperrors.UpstreamFetchError{
			Source:     source,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("received incorrect status code %d body %s", resp.StatusCode, string(body)),
		}
	}

	return body, resp.StatusCode, nil
}

func (c *StrapiClient) count(endpoint, code string) {
	if c.observer != nil {
		c.observer.IncrementUpstream(endpoint, code)
	}
}

// data extracts the data member of a repository envelope.
func data(body []byte) (json.RawMessage, error) {
	if !gjson.ValidBytes(body) {
		return nil, &bpperrors.UpstreamFetchError{Source: source, Err: fmt.Errorf("response is not valid JSON")}
	}
	result := gjson.GetBytes(body, "data")
	if !result.Exists() {
		return nil, &bpperrors.UpstreamFetchError{Source: source, Err: fmt.Errorf("response has no data member")}
	}
	return json.RawMessage(result.Raw), nil
}

func logRequest(_ retryablehttp.Logger, req *http.Request, attempt int) {
	log.Content.WithFields(logrus.Fields{
		"request_id": req.Header.Get(requestIDHeader),
		"uri":        req.URL.Path,
		"attempt":    attempt,
	}).Info("Content repository request")
}

func logResponse(_ retryablehttp.Logger, resp *http.Response) {
	log.Content.WithFields(logrus.Fields{
		"request_id":     resp.Request.Header.Get(requestIDHeader),
		"resp_code":      resp.StatusCode,
		"content_length": resp.ContentLength,
	}).Info("Content repository response")
}
