package base

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/honeycarbs/jobscout/internal/domain/job"
	"github.com/honeycarbs/jobscout/pkg/fetch"
)

// StatusBlocked is LinkedIn's non-standard "request denied" status
const StatusBlocked = 999

// CheckResponse classifies the outcome of a page fetch. A challenge page,
// whether served with 200 or an error status, becomes job.ErrSoftBlocked;
// other failures are returned unchanged.
func CheckResponse(resp *fetch.Response, err error, markers []string) error {
	var se *fetch.StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusForbidden, http.StatusTooManyRequests, StatusBlocked:
			return fmt.Errorf("status %d: %w", se.StatusCode, job.ErrSoftBlocked)
		}
	}
	if resp != nil && HasMarker(resp.Body, markers) {
		return fmt.Errorf("challenge page: %w", job.ErrSoftBlocked)
	}
	return err
}

// RejectMarkers builds a fetch.Request Accept hook that refuses challenge
// pages, so an interstitial served with 200 never reaches the response cache
func RejectMarkers(markers []string) func(*fetch.Response) error {
	return func(resp *fetch.Response) error {
		if HasMarker(resp.Body, markers) {
			return fmt.Errorf("challenge page: %w", job.ErrSoftBlocked)
		}
		return nil
	}
}

// HasMarker reports whether body contains any marker, case-insensitively
func HasMarker(body []byte, markers []string) bool {
	if len(body) == 0 {
		return false
	}
	lower := bytes.ToLower(body)
	for _, m := range markers {
		if m != "" && bytes.Contains(lower, bytes.ToLower([]byte(m))) {
			return true
		}
	}
	return false
}
