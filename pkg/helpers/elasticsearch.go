package helpers

import (
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// ESOptions configures the search client. RequestTimeout bounds the wait for
// response headers and should match the per-call deadline of the index.
type ESOptions struct {
	Addrs          []string
	Username       string
	Password       string
	RequestTimeout time.Duration
	MaxRetries     int
}

// NewESClient creates an Elasticsearch client with optional basic auth. Only
// gateway errors are retried; search is best-effort and must not stall requests.
func NewESClient(opts ESOptions) (*elasticsearch.Client, error) {
	if len(opts.Addrs) == 0 {
		return nil, errors.New("elasticsearch: no addresses configured")
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     opts.Addrs,
		Username:      opts.Username,
		Password:      opts.Password,
		MaxRetries:    opts.MaxRetries,
		DisableRetry:  opts.MaxRetries == 0,
		RetryOnStatus: []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: timeout,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
		},
	})
}
