package server

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// KeepAlive requests url every interval until ctx is done. Hosts that idle
// out quiet containers see this as traffic. A non-positive interval returns
// immediately.
func KeepAlive(ctx context.Context, url string, interval time.Duration, client *http.Client) {
	if interval <= 0 {
		return
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ping(ctx, url, client)
		}
	}
}

func ping(ctx context.Context, url string, client *http.Client) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.WithError(err).Warn("keep-alive request could not be built")
		return
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			log.WithError(err).Warn("keep-alive ping failed")
		}
		return
	}
	_ = resp.Body.Close()
	log.WithField("status", resp.StatusCode).Debug("keep-alive ping")
}
