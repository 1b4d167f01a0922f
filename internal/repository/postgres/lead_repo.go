// internal/repository/postgres/lead_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"dealer-crm-service/internal/domain/lead"
	xerrors "dealer-crm-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
)

const leadColumns = `serial_number, created_at, first_contacted_at,
	first_name, middle_name, last_name, phone, email, address, city, branch,
	lead_status, lead_sub_status, open_closed,
	lead_channel, lead_source, campaign_name, campaign_source, social_organic_channel,
	model_of_interest, trim_level, model_year, category, request_type, current_vehicle,
	income_range, purchase_period, payment_method,
	assigned_agent, sales_consultant, ai_score, comment`

type LeadRepository struct {
	db *DB
}

func NewLeadRepository(db *DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func leadArgs(l lead.Lead) []any {
	return []any{
		l.SerialNumber, l.CreatedDateTime, l.FirstContactedDateTime,
		l.FirstName, l.MiddleName, l.LastName, l.Phone, l.Email, l.Address, l.City, l.Branch,
		string(l.LeadStatus), string(l.LeadSubStatus), string(l.OpenClosed),
		l.LeadChannel, l.LeadSource, l.CampaignName, l.CampaignSource, l.SocialOrganicChannel,
		l.ModelOfInterest, l.Trim, l.ModelYear, l.Category, l.RequestType, l.CurrentVehicle,
		l.IncomeRange, l.PurchasePeriod, l.PaymentMethod,
		l.AssignedAgent, l.SalesConsultant, l.AIScore, l.Comment,
	}
}

func scanLead(row pgx.Row) (lead.Lead, error) {
	var (
		l                            lead.Lead
		status, subStatus, openClose string
	)
	err := row.Scan(
		&l.SerialNumber, &l.CreatedDateTime, &l.FirstContactedDateTime,
		&l.FirstName, &l.MiddleName, &l.LastName, &l.Phone, &l.Email, &l.Address, &l.City, &l.Branch,
		&status, &subStatus, &openClose,
		&l.LeadChannel, &l.LeadSource, &l.CampaignName, &l.CampaignSource, &l.SocialOrganicChannel,
		&l.ModelOfInterest, &l.Trim, &l.ModelYear, &l.Category, &l.RequestType, &l.CurrentVehicle,
		&l.IncomeRange, &l.PurchasePeriod, &l.PaymentMethod,
		&l.AssignedAgent, &l.SalesConsultant, &l.AIScore, &l.Comment,
	)
	if err != nil {
		return lead.Lead{}, err
	}
	l.LeadStatus = lead.Status(status)
	l.LeadSubStatus = lead.SubStatus(subStatus)
	l.OpenClosed = lead.OpenClosed(openClose)
	return l, nil
}

func placeholders(from, n int) string {
	out := make([]string, 0, n)
	for i := from; i < from+n; i++ {
		out = append(out, fmt.Sprintf("$%d", i))
	}
	return strings.Join(out, ", ")
}

// Create inserts a new lead. A duplicate serial number is a validation failure.
func (r *LeadRepository) Create(ctx context.Context, l lead.Lead) (lead.Lead, error) {
	l = l.Clone()
	l.Normalize()
	if l.CreatedDateTime.IsZero() {
		l.CreatedDateTime = time.Now().UTC()
	}
	if err := l.Validate(); err != nil {
		return lead.Lead{}, err
	}

	args := leadArgs(l)
	query := fmt.Sprintf(`INSERT INTO leads (%s) VALUES (%s)`, leadColumns, placeholders(1, len(args)))

	if _, err := r.db.Pool().Exec(ctx, query, args...); err != nil {
		if pgErrorCode(err) == codeUniqueViolation {
			verr := &xerrors.ValidationError{Cause: xerrors.ErrDuplicateEntry}
			verr.Add(lead.FieldSerialNumber, "%q already exists", l.SerialNumber)
			return lead.Lead{}, verr
		}
		return lead.Lead{}, fmt.Errorf("failed to create lead: %w", err)
	}

	return l, nil
}

func (r *LeadRepository) Get(ctx context.Context, serial string) (lead.Lead, error) {
	query := fmt.Sprintf(`SELECT %s FROM leads WHERE serial_number = $1`, leadColumns)

	l, err := scanLead(r.db.Pool().QueryRow(ctx, query, strings.TrimSpace(serial)))
	if errors.Is(err, pgx.ErrNoRows) {
		return lead.Lead{}, fmt.Errorf("lead %q: %w", serial, xerrors.ErrNotFound)
	}
	if err != nil {
		return lead.Lead{}, fmt.Errorf("failed to find lead: %w", err)
	}
	return l, nil
}

func (r *LeadRepository) Exists(ctx context.Context, serial string) (bool, error) {
	var exists bool
	err := r.db.Pool().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM leads WHERE serial_number = $1)`, strings.TrimSpace(serial),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check lead existence: %w", err)
	}
	return exists, nil
}

// Replace overwrites the editable fields of a lead inside a transaction that
// holds the row lock until commit. It returns the locked row and its
// replacement.
func (r *LeadRepository) Replace(ctx context.Context, serial string, fields lead.Lead) (lead.Lead, lead.Lead, error) {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return lead.Lead{}, lead.Lead{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`SELECT %s FROM leads WHERE serial_number = $1 FOR UPDATE`, leadColumns)
	current, err := scanLead(tx.QueryRow(ctx, query, strings.TrimSpace(serial)))
	if errors.Is(err, pgx.ErrNoRows) {
		return lead.Lead{}, lead.Lead{}, fmt.Errorf("lead %q: %w", serial, xerrors.ErrNotFound)
	}
	if err != nil {
		return lead.Lead{}, lead.Lead{}, fmt.Errorf("failed to lock lead: %w", err)
	}

	next := current.WithEditable(fields)
	if err := next.Validate(); err != nil {
		return lead.Lead{}, lead.Lead{}, err
	}

	// serial_number and created_at lead the column list and are never rewritten
	cols := leadColumnNames()
	args := leadArgs(next)
	sets := make([]string, 0, len(cols)-2)
	for i, col := range cols[2:] {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+2))
	}
	update := fmt.Sprintf(`UPDATE leads SET %s, updated_at = NOW() WHERE serial_number = $1`, strings.Join(sets, ", "))

	updateArgs := append([]any{next.SerialNumber}, args[2:]...)
	if _, err := tx.Exec(ctx, update, updateArgs...); err != nil {
		return lead.Lead{}, lead.Lead{}, fmt.Errorf("failed to replace lead: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return lead.Lead{}, lead.Lead{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return current, next, nil
}

// List reads all leads in insertion order. The returned sequence ranges over
// that read and may be consumed any number of times.
func (r *LeadRepository) List(ctx context.Context) (iter.Seq[lead.Lead], error) {
	query := fmt.Sprintf(`SELECT %s FROM leads ORDER BY position`, leadColumns)

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []lead.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leads: %w", err)
	}

	return func(yield func(lead.Lead) bool) {
		for _, l := range leads {
			if !yield(l.Clone()) {
				return
			}
		}
	}, nil
}

func leadColumnNames() []string {
	parts := strings.Split(leadColumns, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
