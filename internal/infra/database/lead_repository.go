package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openclinic/medscout/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	id, npi, name, COALESCE(clinic_name, ''), address, city, state, specialty,
	COALESCE(phone, ''), COALESCE(email, ''), has_email, COALESCE(website, ''),
	COALESCE(linkedin_url, ''), COALESCE(direct_address, ''), apollo_confidence,
	enrichment_status, is_emailed, visited, created_at, last_enriched_at`

// Upsert merges the observed lead onto the stored row in one atomic
// statement keyed by NPI. The ON CONFLICT clause mirrors usecase.MergeOnto:
// registry descriptive fields overwrite, contact fields fill gaps only, an
// existing email survives an incoming null, and enrichment_status only
// moves forward.
func (r *LeadRepository) Upsert(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	query := `
		INSERT INTO leads (
			id, npi, name, clinic_name, address, city, state, specialty, phone,
			email, has_email, website, linkedin_url, direct_address,
			apollo_confidence, enrichment_status, created_at, last_enriched_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (npi)
		DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			specialty = EXCLUDED.specialty,
			clinic_name = COALESCE(EXCLUDED.clinic_name, leads.clinic_name),
			phone = COALESCE(EXCLUDED.phone, leads.phone),
			website = COALESCE(EXCLUDED.website, leads.website),
			linkedin_url = COALESCE(EXCLUDED.linkedin_url, leads.linkedin_url),
			direct_address = COALESCE(EXCLUDED.direct_address, leads.direct_address),
			email = COALESCE(EXCLUDED.email, leads.email),
			has_email = COALESCE(EXCLUDED.email, leads.email) IS NOT NULL,
			apollo_confidence = CASE
				WHEN EXCLUDED.email IS NOT NULL THEN EXCLUDED.apollo_confidence
				ELSE leads.apollo_confidence END,
			enrichment_status = CASE
				WHEN array_position(ARRAY['scout_only','apollo_searched','apollo_enriched'], EXCLUDED.enrichment_status)
				   > array_position(ARRAY['scout_only','apollo_searched','apollo_enriched'], leads.enrichment_status)
				THEN EXCLUDED.enrichment_status
				ELSE leads.enrichment_status END,
			last_enriched_at = COALESCE(EXCLUDED.last_enriched_at, leads.last_enriched_at)
		RETURNING ` + leadColumns

	row := r.DB.QueryRowContext(
		ctx,
		query,
		lead.ID,
		lead.NPI,
		lead.Name,
		nullString(lead.ClinicName),
		lead.Address,
		lead.City,
		lead.State,
		lead.Specialty,
		nullString(lead.Phone),
		nullString(lead.Email),
		lead.HasEmail,
		nullString(lead.Website),
		nullString(lead.LinkedinURL),
		nullString(lead.DirectAddress),
		lead.ApolloConfidence,
		lead.EnrichmentStatus,
		lead.CreatedAt,
		lead.LastEnrichedAt,
	)

	merged, err := scanLead(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, entity.ErrDuplicateNPI
		}
		return nil, err
	}
	return merged, nil
}

func (r *LeadRepository) FindByNPI(ctx context.Context, npi string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE npi = $1`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, npi))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrLeadNotFound
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

// Find returns one page sorted by created_at descending, plus the total
// match count for pagination.
func (r *LeadRepository) Find(ctx context.Context, filter entity.LeadFilter, page, pageSize int) ([]entity.Lead, int, error) {
	where, args := buildLeadWhere(filter)

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		`SELECT %s FROM leads%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		leadColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var leads []entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, *lead)
	}
	return leads, total, rows.Err()
}

func (r *LeadRepository) Count(ctx context.Context, filter entity.LeadFilter) (int, error) {
	where, args := buildLeadWhere(filter)

	var total int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`+where, args...).Scan(&total)
	return total, err
}

// KnownNPIs is the dedup gate: every identifier already stored for a
// city/specialty scope.
func (r *LeadRepository) KnownNPIs(ctx context.Context, city, specialty string) (map[string]bool, error) {
	query := `SELECT npi FROM leads WHERE LOWER(city) = LOWER($1)`
	args := []any{city}
	if specialty != "" {
		query += ` AND specialty ILIKE $2`
		args = append(args, specialty)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	known := make(map[string]bool)
	for rows.Next() {
		var npi string
		if err := rows.Scan(&npi); err != nil {
			return nil, err
		}
		known[npi] = true
	}
	return known, rows.Err()
}

func (r *LeadRepository) MarkEmailed(ctx context.Context, npi string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE leads SET is_emailed = TRUE WHERE npi = $1`, npi)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

// CityBreakdown computes the per-city dashboard counters in one grouped
// query. leads_left counts leads with no outreach record pointing at them.
func (r *LeadRepository) CityBreakdown(ctx context.Context, filter entity.LeadFilter) ([]entity.CityAggregate, error) {
	where, args := buildLeadWhere(filter)

	query := `
		SELECT
			city,
			COUNT(*) AS total_leads,
			COUNT(*) FILTER (WHERE has_email) AS with_email,
			COUNT(*) FILTER (WHERE NOT has_email) AS without_email,
			COUNT(*) FILTER (WHERE enrichment_status = 'apollo_enriched') AS apollo_enriched,
			COUNT(*) FILTER (WHERE enrichment_status = 'apollo_searched') AS apollo_searched,
			COUNT(*) FILTER (
				WHERE NOT EXISTS (SELECT 1 FROM outreach_records o WHERE o.lead_npi = leads.npi)
			) AS leads_left
		FROM leads` + where + `
		GROUP BY city
		ORDER BY total_leads DESC, city ASC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aggregates []entity.CityAggregate
	for rows.Next() {
		var agg entity.CityAggregate
		if err := rows.Scan(
			&agg.City,
			&agg.TotalLeads,
			&agg.WithEmail,
			&agg.WithoutEmail,
			&agg.ApolloEnriched,
			&agg.ApolloSearched,
			&agg.LeadsLeft,
		); err != nil {
			return nil, err
		}
		aggregates = append(aggregates, agg)
	}
	return aggregates, rows.Err()
}

func buildLeadWhere(f entity.LeadFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.City != "" {
		add("LOWER(city) = LOWER($%d)", f.City)
	}
	if f.Specialty != "" {
		add("specialty ILIKE $%d", f.Specialty)
	}
	if f.HasEmail != nil {
		add("has_email = $%d", *f.HasEmail)
	}
	if f.EnrichmentStatus != "" {
		add("enrichment_status = $%d", f.EnrichmentStatus)
	}
	if f.CreatedFrom != nil {
		add("created_at >= $%d", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		add("created_at < $%d", *f.CreatedTo)
	}
	if f.NotEmailed {
		conds = append(conds, "NOT EXISTS (SELECT 1 FROM outreach_records o WHERE o.lead_npi = leads.npi)")
	}
	if f.WithPhone {
		conds = append(conds, "phone IS NOT NULL")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var lastEnriched sql.NullTime

	err := row.Scan(
		&lead.ID,
		&lead.NPI,
		&lead.Name,
		&lead.ClinicName,
		&lead.Address,
		&lead.City,
		&lead.State,
		&lead.Specialty,
		&lead.Phone,
		&lead.Email,
		&lead.HasEmail,
		&lead.Website,
		&lead.LinkedinURL,
		&lead.DirectAddress,
		&lead.ApolloConfidence,
		&lead.EnrichmentStatus,
		&lead.IsEmailed,
		&lead.Visited,
		&lead.CreatedAt,
		&lastEnriched,
	)
	if err != nil {
		return nil, err
	}
	if lastEnriched.Valid {
		t := lastEnriched.Time
		lead.LastEnrichedAt = &t
	}
	return &lead, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
