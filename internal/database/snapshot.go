// Affinity - Hybrid Similarity Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/affinity

package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/affinity/internal/config"
	"github.com/tomtom215/affinity/internal/logging"
	"github.com/tomtom215/affinity/internal/metrics"
	"github.com/tomtom215/affinity/internal/recommend"
)

// Metric labels for the four record sets.
const (
	tableEvents        = "events"
	tableItems         = "items"
	tableUsers         = "users"
	tableSubscriptions = "subscriptions"
)

// SnapshotLoader produces a full snapshot of the record store.
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context) (*recommend.Snapshot, error)
}

// Loader reads snapshots from one configured source.
type Loader struct {
	db         *DB
	src        config.SourceConfig
	attributes []string
}

var _ SnapshotLoader = (*Loader)(nil)

// NewLoader creates a loader. attributes names extra categorical item columns
// to read into Item.Attributes.
//
//nolint:gocritic // hugeParam: source config is copied so later edits do not leak in
func NewLoader(db *DB, src config.SourceConfig, attributes []string) *Loader {
	return &Loader{
		db:         db,
		src:        src,
		attributes: append([]string(nil), attributes...),
	}
}

// LoadSnapshot reads all four tables.
func (l *Loader) LoadSnapshot(ctx context.Context) (*recommend.Snapshot, error) {
	start := time.Now()

	events, err := l.loadEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", l.src.Views, err)
	}
	items, err := l.loadItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", l.src.Items, err)
	}
	users, err := l.loadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", l.src.Users, err)
	}
	subs, err := l.loadSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", l.src.Subscriptions, err)
	}

	logging.Info().
		Str("format", l.src.Format).
		Int("events", len(events)).
		Int("items", len(items)).
		Int("users", len(users)).
		Int("subscriptions", len(subs)).
		Dur("duration", time.Since(start)).
		Msg("Snapshot loaded")

	return recommend.NewSnapshot(events, items, users, subs), nil
}

// prepare resolves the relation of a source table and checks required columns.
func (l *Loader) prepare(ctx context.Context, name string, required ...string) (string, columns, error) {
	rel, err := relation(&l.src, name)
	if err != nil {
		return "", nil, err
	}
	cols, err := l.db.describe(ctx, rel)
	if err != nil {
		return "", nil, err
	}
	if err := cols.require(required...); err != nil {
		return "", nil, err
	}
	return rel, cols, nil
}

// query runs a load query, calling scan for every row.
func (l *Loader) query(ctx context.Context, table, query string, scan func(*sql.Rows) error) error {
	ctx, cancel := context.WithTimeout(ctx, l.db.queryTimeout())
	defer cancel()

	start := time.Now()
	n, err := l.scanAll(ctx, query, scan)
	metrics.RecordDBQuery("load", table, time.Since(start), err)
	if err != nil {
		return err
	}
	metrics.DBRowsLoaded.WithLabelValues(table).Set(float64(n))
	return nil
}

func (l *Loader) scanAll(ctx context.Context, query string, scan func(*sql.Rows) error) (int, error) {
	rows, err := l.db.conn.QueryContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("query: %w", err)
	}
	defer closeWithLog(rows, "load rows")

	n := 0
	for rows.Next() {
		if err := scan(rows); err != nil {
			return n, fmt.Errorf("scan row %d: %w", n, err)
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, fmt.Errorf("iterate rows: %w", err)
	}
	return n, nil
}

func (l *Loader) loadEvents(ctx context.Context) ([]recommend.InteractionEvent, error) {
	rel, cols, err := l.prepare(ctx, l.src.Views, "adventurer_id", "content_id", "seconds_viewed", "year", "month")
	if err != nil {
		return nil, err
	}

	day := "0"
	if cols.has("day_of_month") {
		day = fmt.Sprintf("COALESCE(%s, 0)", cols.expr("day_of_month", "BIGINT"))
	}
	query := fmt.Sprintf(`
		SELECT %s, %s, COALESCE(%s, 0), COALESCE(%s, 0), COALESCE(%s, ''), %s
		FROM %s
		WHERE %s IS NOT NULL AND %s IS NOT NULL`,
		cols.expr("adventurer_id", "VARCHAR"),
		cols.expr("content_id", "VARCHAR"),
		cols.expr("seconds_viewed", "DOUBLE"),
		cols.expr("year", "BIGINT"),
		cols.expr("month", "VARCHAR"),
		day,
		rel,
		quoteIdent(cols["adventurer_id"]),
		quoteIdent(cols["content_id"]),
	)

	var events []recommend.InteractionEvent
	err = l.query(ctx, tableEvents, query, func(rows *sql.Rows) error {
		var (
			ev        recommend.InteractionEvent
			year, dom int64
		)
		if err := rows.Scan(&ev.UserID, &ev.ItemID, &ev.SecondsViewed, &year, &ev.Date.Month, &dom); err != nil {
			return err
		}
		ev.Date.Year = int(year)
		ev.Date.Day = int(dom)
		events = append(events, ev)
		return nil
	})
	return events, err
}

func (l *Loader) loadItems(ctx context.Context) ([]recommend.Item, error) {
	rel, cols, err := l.prepare(ctx, l.src.Items, "content_id")
	if err != nil {
		return nil, err
	}

	var extras []string
	for _, name := range l.attributes {
		if !cols.has(name) {
			logging.Warn().Str("column", name).Str("table", l.src.Items).Msg("Extra content attribute not found, skipping")
			continue
		}
		extras = append(extras, name)
	}

	selects := cols.expr("content_id", "VARCHAR") + ", " +
		cols.expr("minutes", "DOUBLE") + ", " +
		cols.expr("genre_id", "VARCHAR") + ", " +
		cols.expr("language_code", "VARCHAR")
	for _, name := range extras {
		selects += ", " + cols.expr(name, "VARCHAR")
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IS NOT NULL", selects, rel, quoteIdent(cols["content_id"]))

	var items []recommend.Item
	err = l.query(ctx, tableItems, query, func(rows *sql.Rows) error {
		var (
			id       string
			minutes  sql.NullFloat64
			genre    sql.NullString
			language sql.NullString
		)
		extraVals := make([]sql.NullString, len(extras))
		dest := []interface{}{&id, &minutes, &genre, &language}
		for i := range extraVals {
			dest = append(dest, &extraVals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}

		item := recommend.Item{
			ID:       id,
			Minutes:  math.NaN(),
			Genre:    nullString(genre),
			Language: nullString(language),
		}
		if minutes.Valid {
			item.Minutes = minutes.Float64
		}
		for i, name := range extras {
			if extraVals[i].Valid {
				if item.Attributes == nil {
					item.Attributes = make(map[string]string, len(extras))
				}
				item.Attributes[name] = extraVals[i].String
			}
		}
		items = append(items, item)
		return nil
	})
	return items, err
}

func (l *Loader) loadUsers(ctx context.Context) ([]recommend.User, error) {
	rel, cols, err := l.prepare(ctx, l.src.Users, "adventurer_id")
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s, %s, %s, %s FROM %s WHERE %s IS NOT NULL",
		cols.expr("adventurer_id", "VARCHAR"),
		cols.expr("primary_language", "VARCHAR"),
		cols.expr("age", "BIGINT"),
		cols.expr("region", "VARCHAR"),
		rel,
		quoteIdent(cols["adventurer_id"]),
	)

	var users []recommend.User
	err = l.query(ctx, tableUsers, query, func(rows *sql.Rows) error {
		var (
			id       string
			language sql.NullString
			age      sql.NullInt64
			region   sql.NullString
		)
		if err := rows.Scan(&id, &language, &age, &region); err != nil {
			return err
		}
		u := recommend.User{
			ID:              id,
			PrimaryLanguage: nullString(language),
			Region:          nullString(region),
		}
		if age.Valid {
			a := int(age.Int64)
			u.Age = &a
		}
		users = append(users, u)
		return nil
	})
	return users, err
}

func (l *Loader) loadSubscriptions(ctx context.Context) ([]recommend.Subscription, error) {
	rel, cols, err := l.prepare(ctx, l.src.Subscriptions, "adventurer_id", "publisher_id")
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s IS NOT NULL AND %s IS NOT NULL",
		cols.expr("adventurer_id", "VARCHAR"),
		cols.expr("publisher_id", "VARCHAR"),
		rel,
		quoteIdent(cols["adventurer_id"]),
		quoteIdent(cols["publisher_id"]),
	)

	var subs []recommend.Subscription
	err = l.query(ctx, tableSubscriptions, query, func(rows *sql.Rows) error {
		var s recommend.Subscription
		if err := rows.Scan(&s.UserID, &s.PublisherID); err != nil {
			return err
		}
		subs = append(subs, s)
		return nil
	})
	return subs, err
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
