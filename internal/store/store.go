// Package store implements video.Source on top of a relational videos table.
package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/doug-martin/goqu/v9/exp"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"ou-videos-mcp/internal/video"
)

// DefaultTable is the table queried when none is configured.
const DefaultTable = "videos"

var (
	col_title        = goqu.C("title")
	col_url          = goqu.C("url")
	col_channelTitle = goqu.C("channel_title")
	col_publishedAt  = goqu.C("published_at")
	col_sport        = goqu.C("sport")
	col_views        = goqu.C("views")
	col_duration     = goqu.C("duration")
	col_description  = goqu.C("description")
)

type videoRow struct {
	Title        sql.NullString `db:"title"`
	URL          sql.NullString `db:"url"`
	ChannelTitle sql.NullString `db:"channel_title"`
	PublishedAt  sql.NullTime   `db:"published_at"`
	Sport        sql.NullString `db:"sport"`
	Views        sql.NullInt64  `db:"views"`
	Duration     sql.NullString `db:"duration"`
}

// Store queries videos through goqu. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	goquDb *goqu.Database
	table  exp.IdentifierExpression
}

// Open connects to the database and verifies the connection. Driver is
// either "postgres" or "sqlite3".
func Open(ctx context.Context, driver, dsn, table string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("database url is empty")
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s database", driver)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "connecting to %s database", driver)
	}
	return New(db, driver, table), nil
}

// New wraps an existing connection. Dialect must match the driver behind db.
func New(db *sql.DB, dialect, table string) *Store {
	if table == "" {
		table = DefaultTable
	}
	return &Store{
		db:     db,
		goquDb: goqu.New(dialect, db),
		table:  goqu.T(table),
	}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Query runs a single SELECT against the videos table.
func (s *Store) Query(ctx context.Context, q video.Query) ([]video.Record, error) {
	rows := make([]*videoRow, 0)
	err := s.dataset(q).Prepared(true).ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, errors.Wrap(err, "querying videos")
	}
	return rowsToRecords(rows), nil
}

func (s *Store) dataset(q video.Query) *goqu.SelectDataset {
	ds := s.goquDb.
		From(s.table).
		Select(col_title, col_url, col_channelTitle, col_publishedAt, col_sport, col_views, col_duration).
		Where(createFilters(q)...).
		Order(createOrdering(q.Order)...)

	if q.Limit > 0 {
		ds = ds.Limit(uint(q.Limit))
	} else {
		ds = ds.Where(goqu.L("1 = 0"))
	}
	return ds
}

func createFilters(q video.Query) []exp.Expression {
	filters := make([]exp.Expression, 0, 3)
	if q.Text != "" {
		pattern := "%" + q.Text + "%"
		filters = append(filters, goqu.Or(
			col_title.ILike(pattern),
			col_description.ILike(pattern),
			col_channelTitle.ILike(pattern),
		))
	}
	if q.Sport != "" {
		filters = append(filters, goqu.Func("LOWER", col_sport).Eq(strings.ToLower(q.Sport)))
	}
	if !q.Since.IsZero() {
		filters = append(filters, col_publishedAt.Gte(q.Since.UTC()))
	}
	return filters
}

func createOrdering(order video.Order) []exp.OrderedExpression {
	if order == video.OrderViews {
		return []exp.OrderedExpression{col_views.Desc(), col_publishedAt.Desc()}
	}
	return []exp.OrderedExpression{col_publishedAt.Desc()}
}

func rowsToRecords(rows []*videoRow) []video.Record {
	result := make([]video.Record, 0, len(rows))
	for _, row := range rows {
		rec := video.Record{
			Title:        row.Title.String,
			URL:          row.URL.String,
			ChannelTitle: row.ChannelTitle.String,
			Sport:        row.Sport.String,
			Views:        row.Views.Int64,
			Duration:     row.Duration.String,
		}
		if row.PublishedAt.Valid {
			rec.PublishedDate = row.PublishedAt.Time.UTC()
		}
		result = append(result, rec)
	}
	return result
}
