package artifacts

import (
	"net/http"
	"time"
)

func NewDownloaderWithClient(client *http.Client) *Downloader {
	return newDownloaderWithClient(client)
}

// SetClock replaces the clock used to refresh cache entries.
func (c *CachedSource) SetClock(now func() time.Time) {
	c.now = now
}
