// Package httpclient provides the shared HTTP client for REST backends.
package httpclient

import (
	"net/http"
	"sync"
	"time"

	"github.com/oukeidos/filtertranslate/internal/version"
)

const (
	// DefaultTimeout bounds one translation request. A full 30720-character
	// batch through an LLM backend can take minutes; Cloud Translation is
	// usually done in seconds.
	DefaultTimeout = 5 * time.Minute

	// One idle connection per worker is enough.
	MaxIdleConnsPerHost   = 8
	IdleConnTimeout       = 90 * time.Second
	TLSHandshakeTimeout   = 30 * time.Second
	ExpectContinueTimeout = 2 * time.Second
)

var (
	defaultClient     *http.Client
	defaultClientOnce sync.Once
	overrideClient    *http.Client
)

// UserAgent identifies requests made by this tool.
func UserAgent() string {
	return "filtertranslate/" + version.Version
}

// userAgentTransport fills in the User-Agent header when the caller left it
// empty.
type userAgentTransport struct {
	base  http.RoundTripper
	agent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.agent)
	return t.base.RoundTrip(r)
}

// NewClient returns an http.Client with the given timeout, proxy settings
// from the environment and the tool's User-Agent.
func NewClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConnsPerHost:   MaxIdleConnsPerHost,
		IdleConnTimeout:       IdleConnTimeout,
		TLSHandshakeTimeout:   TLSHandshakeTimeout,
		ExpectContinueTimeout: ExpectContinueTimeout,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{base: transport, agent: UserAgent()},
	}
}

// GetDefaultClient returns the shared http.Client used by REST backends.
func GetDefaultClient() *http.Client {
	if overrideClient != nil {
		return overrideClient
	}
	defaultClientOnce.Do(func() {
		defaultClient = NewClient(DefaultTimeout)
	})
	return defaultClient
}

// SetDefaultClientForTesting overrides the singleton client for tests.
// It returns a restore function to reset the previous client.
func SetDefaultClientForTesting(client *http.Client) func() {
	prevOverride := overrideClient
	overrideClient = client
	return func() {
		overrideClient = prevOverride
	}
}
