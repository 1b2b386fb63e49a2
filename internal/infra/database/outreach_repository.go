package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/openclinic/medscout/internal/entity"
)

type OutreachRepository struct {
	DB *sql.DB
}

func NewOutreachRepository(db *sql.DB) *OutreachRepository {
	return &OutreachRepository{DB: db}
}

// Insert appends one outreach record. There is no update path: records are
// immutable once written.
func (r *OutreachRepository) Insert(ctx context.Context, rec *entity.OutreachRecord) error {
	query := `
		INSERT INTO outreach_records (id, lead_npi, sender, receiver, subject, body, status, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.DB.ExecContext(ctx, query,
		rec.ID,
		nullString(rec.LeadNPI),
		rec.Sender,
		rec.Receiver,
		rec.Subject,
		rec.Body,
		rec.Status,
		rec.SentAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outreach record: %w", err)
	}
	return nil
}

func (r *OutreachRepository) Count(ctx context.Context, filter entity.OutreachFilter) (int, error) {
	where, args := buildOutreachWhere(filter)

	var total int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM outreach_records o`+where, args...).Scan(&total)
	return total, err
}

// CountByCity joins each record through its lead to group send outcomes by
// city. Records without a linked lead have no city and are skipped here;
// they still show in the global counters.
func (r *OutreachRepository) CountByCity(ctx context.Context, filter entity.OutreachFilter) ([]entity.OutreachCityCount, error) {
	where, args := buildOutreachWhere(filter)
	if where == "" {
		where = " WHERE o.lead_npi IS NOT NULL"
	} else {
		where += " AND o.lead_npi IS NOT NULL"
	}

	query := `
		SELECT
			l.city,
			COUNT(*) FILTER (WHERE o.status = 'sent') AS sent,
			COUNT(*) FILTER (WHERE o.status = 'failed') AS failed
		FROM outreach_records o
		JOIN leads l ON l.npi = o.lead_npi` + where + `
		GROUP BY l.city`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []entity.OutreachCityCount
	for rows.Next() {
		var c entity.OutreachCityCount
		if err := rows.Scan(&c.City, &c.Sent, &c.Failed); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func buildOutreachWhere(f entity.OutreachFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		add("o.status = $%d", f.Status)
	}
	if f.SentFrom != nil {
		add("o.sent_at >= $%d", *f.SentFrom)
	}
	if f.SentTo != nil {
		add("o.sent_at < $%d", *f.SentTo)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
