package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/core/port"
)

// AuditTrailRepository appends security events to the aegis.security_events
// table. The table is append-only; nothing in the core ever updates or
// deletes rows.
type AuditTrailRepository struct {
	pool    *pgxpool.Pool
	builder squirrel.StatementBuilderType
}

// NewAuditTrailRepository constructs an AuditTrailRepository.
func NewAuditTrailRepository(pool *pgxpool.Pool) *AuditTrailRepository {
	return &AuditTrailRepository{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Append inserts a single audit record.
func (r *AuditTrailRepository) Append(ctx context.Context, record domain.AuditRecord) error {
	var detail []byte
	if len(record.Detail) > 0 {
		encoded, err := json.Marshal(record.Detail)
		if err != nil {
			return fmt.Errorf("marshal audit detail: %w", err)
		}
		detail = encoded
	}

	at := record.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	sql, args, err := r.builder.Insert("aegis.security_events").
		Columns(
			"id",
			"kind",
			"subject_id",
			"session_id",
			"detail",
			"occurred_at",
		).
		Values(
			record.ID,
			record.Kind,
			nullable(record.SubjectID),
			nullable(record.SessionID),
			detail,
			at,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert audit sql: %w", err)
	}

	if _, err := r.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}

	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ port.AuditTrail = (*AuditTrailRepository)(nil)
