// Package services is the transport adapter for the services endpoint.
package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/samvad-hq/samvad-services-client/internal/domain"
	"github.com/samvad-hq/samvad-services-client/pkg/apicall"
	"github.com/samvad-hq/samvad-services-client/pkg/httpclient"
)

// ServicesPath is resolved against the configured base URL.
const ServicesPath = "services"

// API issues requests against one base URL.
type API struct {
	client  httpclient.Client
	baseURL *url.URL
}

// NewAPI validates baseURL and binds it to client.
func NewAPI(client httpclient.Client, baseURL string) (*API, error) {
	if client == nil {
		return nil, fmt.Errorf("http client must not be nil")
	}
	base, err := ParseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &API{client: client, baseURL: base}, nil
}

// ParseBaseURL checks that raw is an absolute http(s) URL and makes sure its
// path ends with a slash so relative paths resolve beneath it.
func ParseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("base url is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// BaseURL returns the normalised base URL.
func (a *API) BaseURL() string { return a.baseURL.String() }

// ServicesURL returns the absolute URL of the services endpoint.
func (a *API) ServicesURL() string {
	return a.baseURL.ResolveReference(&url.URL{Path: ServicesPath}).String()
}

// GetServices returns the call fetching the services record.
func (a *API) GetServices() apicall.Call[domain.ServiceRecord] {
	return apicall.NewJSONCall[domain.ServiceRecord](a.client, a.ServicesURL(), nil)
}
