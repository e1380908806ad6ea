package catalog

import (
	"net/http"
	"time"
)

func NewHTTPCatalogWithClient(baseURL string, client *http.Client, ttl time.Duration) *HTTPCatalog {
	return newHTTPCatalogWithClient(baseURL, client, ttl)
}

// SetClock replaces the document cache clock.
func (c *HTTPCatalog) SetClock(now func() time.Time) {
	c.docs.now = now
}
