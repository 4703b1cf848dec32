// Package tools holds the video tool catalog and the invoker that turns a
// tools/call into a single query against a video.Source.
package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"ou-videos-mcp/internal/metrics"
	"ou-videos-mcp/internal/video"
)

// ErrUnknownTool is returned by Invoker.Call for names that are not registered.
var ErrUnknownTool = errors.New("unknown tool")

// ExecutionError reports any failure while running a tool. Its message is
// shown to the client as-is.
type ExecutionError struct {
	Message string
}

func (e *ExecutionError) Error() string { return e.Message }

// Result is the outcome of a successful tool call.
type Result struct {
	Records []video.Record
	// Description says what was asked for, e.g. `matching "Gabriel"`.
	Description string
}

// handler turns prepared arguments into a source query and a description of it.
type handler func(args Args) (video.Query, string)

// Invoker dispatches tool calls. It holds no per-call state and is safe for
// concurrent use.
type Invoker struct {
	catalog     *Catalog
	source      video.Source
	handlers    map[string]handler
	searchOrder video.Order
	now         func() time.Time
}

// Option customises an Invoker.
type Option func(*Invoker)

// WithSearchOrder sets the ordering used by search_ou_videos.
func WithSearchOrder(order video.Order) Option {
	return func(i *Invoker) { i.searchOrder = order }
}

// WithClock replaces time.Now, used to compute day windows.
func WithClock(now func() time.Time) Option {
	return func(i *Invoker) { i.now = now }
}

// NewInvoker builds an Invoker for every tool in catalog. It fails if the
// catalog names a tool that has no handler.
func NewInvoker(catalog *Catalog, source video.Source, opts ...Option) (*Invoker, error) {
	i := &Invoker{
		catalog:     catalog,
		source:      source,
		searchOrder: video.OrderPublished,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	all := map[string]handler{
		SearchOUVideosName: i.searchOUVideos,
		VideosBySportName:  i.videosBySport,
		RecentVideosName:   i.recentVideos,
	}
	i.handlers = make(map[string]handler, len(all))
	for _, def := range catalog.List() {
		h, ok := all[def.Name]
		if !ok {
			return nil, errors.Errorf("no handler for tool %q", def.Name)
		}
		i.handlers[def.Name] = h
	}
	return i, nil
}

// Call validates raw arguments, runs exactly one source query and returns the
// records. Failures other than ErrUnknownTool are *ExecutionError.
func (i *Invoker) Call(ctx context.Context, name string, raw map[string]any) (Result, error) {
	def, ok := i.catalog.Get(name)
	h, hasHandler := i.handlers[name]
	if !ok || !hasHandler {
		return Result{}, errors.Wrap(ErrUnknownTool, name)
	}
	start := time.Now()
	args, err := prepareArgs(def, raw)
	if err != nil {
		metrics.RecordToolCall(name, metrics.OutcomeInvalid, time.Since(start))
		return Result{}, err
	}
	q, desc := h(args)
	records, err := i.source.Query(ctx, q)
	elapsed := time.Since(start)
	logger := log.WithFields(log.Fields{"tool": name, "limit": q.Limit, "duration": elapsed})
	if err != nil {
		metrics.RecordToolCall(name, metrics.OutcomeError, elapsed)
		logger.WithError(err).Warn("tool query failed")
		return Result{}, &ExecutionError{Message: err.Error()}
	}
	metrics.RecordToolCall(name, metrics.OutcomeSuccess, elapsed)
	logger.WithField("records", len(records)).Info("tool call completed")
	return Result{Records: records, Description: desc}, nil
}

func (i *Invoker) searchOUVideos(args Args) (video.Query, string) {
	query := args.String("query")
	return video.Query{
		Text:  query,
		Order: i.searchOrder,
		Limit: args.Limit(),
	}, fmt.Sprintf("matching %q", query)
}

func (i *Invoker) videosBySport(args Args) (video.Query, string) {
	sport := args.String("sport")
	q := video.Query{
		Sport: sport,
		Order: video.OrderPublished,
		Limit: args.Limit(),
	}
	desc := "for " + sport
	if days := args.Int("days"); days > 0 {
		q.Since = i.now().AddDate(0, 0, -days)
		desc = fmt.Sprintf("for %s in the last %d days", sport, days)
	}
	return q, desc
}

func (i *Invoker) recentVideos(args Args) (video.Query, string) {
	sport := args.String("sport")
	desc := "most recent"
	if sport != "" {
		desc = "most recent for " + sport
	}
	return video.Query{
		Sport: sport,
		Order: video.OrderPublished,
		Limit: args.Limit(),
	}, desc
}
