// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Transport records the duration and cache outcome of outbound requests.
type Transport struct {
	Base    http.RoundTripper
	metrics Provider
}

func NewTransport(base http.RoundTripper, metrics Provider) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base, metrics}
}

func (t *Transport) RoundTrip(req *http.Request) (resp *http.Response, err error) {
	start := time.Now()
	resp, err = t.Base.RoundTrip(req)
	elapsed := float64(time.Since(start)) / float64(time.Second)
	// transport or rate limit error
	if resp == nil && err != nil {
		return resp, err
	}
	handler := HandlerLabel(req.URL.Path)
	statusCode := strconv.Itoa(resp.StatusCode)
	t.metrics.ObserveOutboundRequestDuration(handler, req.Method, statusCode, elapsed)

	if resp.Header.Get("X-From-Cache") == "1" {
		t.metrics.IncreaseOutboundCacheHits(req.Method, handler)
	} else {
		t.metrics.IncreaseOutboundCacheMisses(req.Method, handler)
	}

	return resp, err
}

func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}

// HandlerLabel collapses issue and project keys in a path so that label
// cardinality stays bounded, e.g. /rest/api/3/issue/WEB-1 becomes
// /rest/api/3/issue/{key}.
func HandlerLabel(path string) string {
	parts := strings.Split(path, "/")
	for i := 1; i < len(parts); i++ {
		switch parts[i-1] {
		case "issue", "issues", "project", "projects":
			if parts[i] != "" && parts[i] != "search" {
				parts[i] = "{key}"
			}
		}
	}
	return strings.Join(parts, "/")
}
