package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ou-videos-mcp/internal/video"
)

type fakeSource struct {
	queries []video.Query
	records []video.Record
	err     error
}

func (f *fakeSource) Query(_ context.Context, q video.Query) ([]video.Record, error) {
	f.queries = append(f.queries, q)
	return f.records, f.err
}

var fixedNow = time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)

func newTestInvoker(t *testing.T, src *fakeSource, opts ...Option) *Invoker {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	inv, err := NewInvoker(DefaultCatalog(), src, opts...)
	require.NoError(t, err)
	return inv
}

func TestInvoker_EffectiveLimit(t *testing.T) {
	tests := map[string]struct {
		tool     string
		args     map[string]any
		expected int
	}{
		"search default":         {tool: SearchOUVideosName, args: map[string]any{"query": "x"}, expected: 10},
		"search under max":       {tool: SearchOUVideosName, args: map[string]any{"query": "x", "limit": 25.0}, expected: 25},
		"search at max":          {tool: SearchOUVideosName, args: map[string]any{"query": "x", "limit": 50.0}, expected: 50},
		"search over max":        {tool: SearchOUVideosName, args: map[string]any{"query": "x", "limit": 100.0}, expected: 50},
		"search huge":            {tool: SearchOUVideosName, args: map[string]any{"query": "x", "limit": 1e300}, expected: 50},
		"search zero passes":     {tool: SearchOUVideosName, args: map[string]any{"query": "x", "limit": 0.0}, expected: 0},
		"search negative passes": {tool: SearchOUVideosName, args: map[string]any{"query": "x", "limit": -5.0}, expected: -5},
		"sport default":          {tool: VideosBySportName, args: map[string]any{"sport": "Football"}, expected: 10},
		"sport over max":         {tool: VideosBySportName, args: map[string]any{"sport": "Football", "limit": 51.0}, expected: 50},
		"recent default":         {tool: RecentVideosName, args: map[string]any{}, expected: 10},
		"recent over max":        {tool: RecentVideosName, args: map[string]any{"limit": 75.0}, expected: 50},
		"null limit is default":  {tool: RecentVideosName, args: map[string]any{"limit": nil}, expected: 10},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			src := &fakeSource{}
			inv := newTestInvoker(t, src)

			_, err := inv.Call(context.Background(), tc.tool, tc.args)
			require.NoError(t, err)
			require.Len(t, src.queries, 1)
			assert.Equal(t, tc.expected, src.queries[0].Limit)
		})
	}
}

func TestInvoker_SearchQuery(t *testing.T) {
	src := &fakeSource{records: []video.Record{{Title: "a"}, {Title: "b"}}}
	inv := newTestInvoker(t, src)

	res, err := inv.Call(context.Background(), SearchOUVideosName, map[string]any{"query": "Gabriel"})
	require.NoError(t, err)

	assert.Equal(t, src.records, res.Records)
	assert.Equal(t, `matching "Gabriel"`, res.Description)
	assert.Equal(t, video.Query{Text: "Gabriel", Order: video.OrderPublished, Limit: 10}, src.queries[0])
}

func TestInvoker_SearchOrderOption(t *testing.T) {
	src := &fakeSource{}
	inv := newTestInvoker(t, src, WithSearchOrder(video.OrderViews))

	_, err := inv.Call(context.Background(), SearchOUVideosName, map[string]any{"query": "Sooners"})
	require.NoError(t, err)
	assert.Equal(t, video.OrderViews, src.queries[0].Order)
}

func TestInvoker_VideosBySportDays(t *testing.T) {
	tests := map[string]struct {
		args          map[string]any
		expectedSince time.Time
		expectedDesc  string
	}{
		"default 30 days": {
			args:          map[string]any{"sport": "Softball"},
			expectedSince: fixedNow.AddDate(0, 0, -30),
			expectedDesc:  "for Softball in the last 30 days",
		},
		"explicit days": {
			args:          map[string]any{"sport": "Softball", "days": 7.0},
			expectedSince: fixedNow.AddDate(0, 0, -7),
			expectedDesc:  "for Softball in the last 7 days",
		},
		"zero days disables the window": {
			args:         map[string]any{"sport": "Softball", "days": 0.0},
			expectedDesc: "for Softball",
		},
		"negative days disables the window": {
			args:         map[string]any{"sport": "Softball", "days": -3.0},
			expectedDesc: "for Softball",
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			src := &fakeSource{}
			inv := newTestInvoker(t, src)

			res, err := inv.Call(context.Background(), VideosBySportName, tc.args)
			require.NoError(t, err)

			q := src.queries[0]
			assert.Equal(t, "Softball", q.Sport)
			assert.Equal(t, video.OrderPublished, q.Order)
			assert.True(t, tc.expectedSince.Equal(q.Since), "since %v, expected %v", q.Since, tc.expectedSince)
			assert.Equal(t, tc.expectedDesc, res.Description)
		})
	}
}

func TestInvoker_RecentVideos(t *testing.T) {
	src := &fakeSource{}
	inv := newTestInvoker(t, src)

	res, err := inv.Call(context.Background(), RecentVideosName, nil)
	require.NoError(t, err)
	assert.Equal(t, "most recent", res.Description)
	assert.Equal(t, "", src.queries[0].Sport)
	assert.True(t, src.queries[0].Since.IsZero())

	res, err = inv.Call(context.Background(), RecentVideosName, map[string]any{"sport": "Gymnastics"})
	require.NoError(t, err)
	assert.Equal(t, "most recent for Gymnastics", res.Description)
	assert.Equal(t, "Gymnastics", src.queries[1].Sport)
}

func TestInvoker_MissingRequiredParameter(t *testing.T) {
	tests := map[string]struct {
		tool    string
		args    map[string]any
		missing string
	}{
		"search without query": {tool: SearchOUVideosName, args: map[string]any{"limit": 5.0}, missing: "query"},
		"search with null":     {tool: SearchOUVideosName, args: map[string]any{"query": nil}, missing: "query"},
		"sport without sport":  {tool: VideosBySportName, args: nil, missing: "sport"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			src := &fakeSource{}
			inv := newTestInvoker(t, src)

			_, err := inv.Call(context.Background(), tc.tool, tc.args)

			var execErr *ExecutionError
			require.ErrorAs(t, err, &execErr)
			assert.Equal(t, "missing required parameter: "+tc.missing, execErr.Message)
			assert.Empty(t, src.queries, "no downstream query may be made")
		})
	}
}

func TestInvoker_InvalidArgumentType(t *testing.T) {
	src := &fakeSource{}
	inv := newTestInvoker(t, src)

	_, err := inv.Call(context.Background(), SearchOUVideosName, map[string]any{"query": "x", "limit": "ten"})

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Message, "invalid arguments")
	assert.Contains(t, execErr.Message, "limit")
	assert.Empty(t, src.queries)
}

func TestInvoker_SourceFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	inv := newTestInvoker(t, src)

	res, err := inv.Call(context.Background(), RecentVideosName, map[string]any{})

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Message, "connection refused")
	assert.Nil(t, res.Records)
	assert.Len(t, src.queries, 1, "failures are not retried")
}

func TestInvoker_UnknownTool(t *testing.T) {
	src := &fakeSource{}
	inv := newTestInvoker(t, src)

	_, err := inv.Call(context.Background(), "bogus_tool", map[string]any{})
	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.Empty(t, src.queries)
}

func TestNewInvoker_RejectsToolWithoutHandler(t *testing.T) {
	catalog, err := NewCatalog(Definition{
		Name:        "delete_everything",
		InputSchema: InputSchema{Type: "object", Properties: map[string]Property{}},
	})
	require.NoError(t, err)

	_, err = NewInvoker(catalog, &fakeSource{})
	assert.Error(t, err)
}

func TestInvoker_DoesNotMutateCallerArgs(t *testing.T) {
	src := &fakeSource{}
	inv := newTestInvoker(t, src)
	args := map[string]any{"query": "x"}

	_, err := inv.Call(context.Background(), SearchOUVideosName, args)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"query": "x"}, args)
}
