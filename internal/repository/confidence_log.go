package repository

import (
	"context"
	"database/sql"
	"fmt"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/services/risk"
	applogger "CoinPulse/pkg/logger"
)

// CHConfidenceLog appends risk confidence observations to ClickHouse. The
// table is insert-only; accuracy analysis reads it offline.
type CHConfidenceLog struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHConfidenceLog(db *sql.DB, table string, l *applogger.Logger) *CHConfidenceLog {
	return &CHConfidenceLog{db: db, table: table, l: l}
}

func (s *CHConfidenceLog) Record(ctx context.Context, rec models.ConfidenceRecord) error {
	q := fmt.Sprintf(
		"INSERT INTO %s (id, symbol, day, r_squared, sample_size, risk_level, price) VALUES (?, ?, ?, ?, ?, ?, ?)",
		s.table,
	)
	_, err := s.db.ExecContext(ctx, q,
		rec.ID,
		rec.Symbol,
		rec.Date,
		rec.RSquared,
		rec.SampleSize,
		rec.RiskLevel,
		rec.Price,
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse confidence insert error",
				applogger.String("symbol", rec.Symbol),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("record confidence: %w", err)
	}
	return nil
}

var _ risk.ConfidenceLog = (*CHConfidenceLog)(nil)
