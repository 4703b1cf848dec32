// Package video defines the video record shape and the query capability that
// the tool layer uses to reach a backing data source.
package video

import (
	"context"
	"time"
)

// MaxLimit is the largest number of records any tool may request.
const MaxLimit = 50

// Record is a single video as returned by a Source.
type Record struct {
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	ChannelTitle  string    `json:"channelTitle"`
	PublishedDate time.Time `json:"publishedDate"`
	Sport         string    `json:"sport,omitempty"`
	Views         int64     `json:"views,omitempty"`
	Duration      string    `json:"duration,omitempty"`
}

// Order selects how a Source sorts its results. All orders are descending.
type Order string

const (
	OrderPublished Order = "published"
	OrderViews     Order = "views"
)

// Query describes a single filtered, sorted, limited lookup.
type Query struct {
	// Text is matched case-insensitively against the searchable fields.
	Text string
	// Sport restricts results to a single sport, compared case-insensitively.
	Sport string
	// Since drops records published before it. Zero means no lower bound.
	Since time.Time
	Order Order
	// Limit is passed through unchanged; sources decide what a
	// non-positive value means.
	Limit int
}

// Source answers a Query. Implementations must make at most one downstream
// request per call.
type Source interface {
	Query(ctx context.Context, q Query) ([]Record, error)
}
