package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	pkgch "StockPulse/pkg/clickhouse"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

const insertChunk = 2000

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// CHHistoryStore reads and writes daily bars in a ClickHouse table.
type CHHistoryStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

var _ domrepo.HistorySource = (*CHHistoryStore)(nil)

func NewCHHistoryStore(ch *pkgch.Client, table string, l *applogger.Logger) (*CHHistoryStore, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if l == nil {
		l = applogger.NewNop()
	}
	return &CHHistoryStore{db: ch.DB(), table: table, l: l}, nil
}

// Schema returns the DDL for the daily bars table. ReplacingMergeTree keeps
// the last write per (symbol, day), so re-importing a file is idempotent.
func (s *CHHistoryStore) Schema() []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            symbol LowCardinality(String),
            day    Date,
            open   Float64,
            high   Float64,
            low    Float64,
            close  Float64,
            volume Float64,
            ingested_at DateTime DEFAULT now()
        )
        ENGINE = ReplacingMergeTree(ingested_at)
        ORDER BY (symbol, day)
    `, s.table)}
}

// GetBars returns bars for symbol between from and to inclusive, ascending.
func (s *CHHistoryStore) GetBars(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT day, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ? AND day >= ? AND day <= ?
        ORDER BY day ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, util.TradingDay(from), util.TradingDay(to))
	if err != nil {
		s.l.Error("clickhouse get_bars query error",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.Bar, 0, 256)
	for rows.Next() {
		var b models.Bar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	s.l.Info("clickhouse get_bars ok",
		applogger.String("table", s.table),
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

// InsertBars writes bars in multi-row chunks. Bars without a date are skipped.
func (s *CHHistoryStore) InsertBars(ctx context.Context, symbol string, bars []models.Bar) (int, error) {
	written := 0
	for start := 0; start < len(bars); start += insertChunk {
		end := min(start+insertChunk, len(bars))
		q, args := s.insertStatement(symbol, bars[start:end])
		if len(args) == 0 {
			continue
		}
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return written, fmt.Errorf("insert bars: %w", err)
		}
		written += len(args) / 7
	}
	return written, nil
}

func (s *CHHistoryStore) insertStatement(symbol string, bars []models.Bar) (string, []interface{}) {
	values := make([]string, 0, len(bars))
	args := make([]interface{}, 0, len(bars)*7)
	for _, b := range bars {
		if b.Date.IsZero() {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args, symbol, util.TradingDay(b.Date), b.Open, b.High, b.Low, b.Close, b.Volume)
	}
	q := fmt.Sprintf("INSERT INTO %s (symbol, day, open, high, low, close, volume) VALUES %s",
		s.table, strings.Join(values, ","))
	return q, args
}
