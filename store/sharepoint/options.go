package sharepoint

import (
	"net/http"
	"time"
)

// DefaultClientID is the public client id used for the password grant when
// none is configured.
const DefaultClientID = "d3590ed6-52b3-4102-aeff-aad2292ab01c"

const DefaultTimeout = 60 * time.Second

type options struct {
	tenant   string
	clientID string
	tokenURL string
	client   *http.Client
	timeout  time.Duration
}

// Option configures a SharePoint session.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		tenant:   "organizations",
		clientID: DefaultClientID,
		timeout:  DefaultTimeout,
	}
}

// WithTenant sets the Azure AD tenant (id or domain) that issues tokens.
func WithTenant(tenant string) Option {
	return func(o *options) {
		if tenant != "" {
			o.tenant = tenant
		}
	}
}

func WithClientID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.clientID = id
		}
	}
}

// WithTokenURL replaces the Azure AD token endpoint.
func WithTokenURL(url string) Option {
	return func(o *options) {
		o.tokenURL = url
	}
}

// WithHTTPClient sets the HTTP client used for token requests and as the base
// transport for REST calls.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}
