// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package relay

import (
	"net/http"
	"time"

	"github.com/die-net/lrucache"
	"github.com/fugitivexyz/jira-bug-mointor/metrics"
	"github.com/m4ns0ur/httpcache"
)

const (
	DefaultCacheSize   = 64 << 20
	defaultCacheMaxAge = 15 * time.Minute
	defaultTimeout     = 30 * time.Second
)

// NewHTTPClient returns a client whose GET responses are kept in an in-memory
// LRU cache of cacheSize bytes, honoring the relay's Cache-Control headers.
// A non-positive cacheSize disables caching. Requests are observed through
// provider when it is not nil.
func NewHTTPClient(cacheSize int64, provider metrics.Provider) *http.Client {
	var transport http.RoundTripper = http.DefaultTransport
	if cacheSize > 0 {
		cache := httpcache.NewTransport(lrucache.New(cacheSize, int64(defaultCacheMaxAge/time.Second)))
		cache.Transport = transport
		cache.MarkCachedResponses = true
		transport = cache
	}
	if provider != nil {
		transport = metrics.NewTransport(transport, provider)
	}
	return &http.Client{
		Transport: transport,
		Timeout:   defaultTimeout,
	}
}
