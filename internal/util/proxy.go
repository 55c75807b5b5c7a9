// Package util holds small helpers shared by the outbound HTTP
// clients.
package util

import (
	"net/http"
	"net/url"
)

// NewProxyFunc builds the proxy selector for outbound HTTP clients
// (speech-to-text upload, roster API). Explicitly configured proxy
// URLs take precedence over the standard HTTP_PROXY/HTTPS_PROXY
// environment variables; with neither set the environment decides.
func NewProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
