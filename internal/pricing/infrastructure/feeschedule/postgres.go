package feeschedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	pricing "staybook/internal/pricing/domain"
)

const (
	defaultSchedulesTable = "fee_schedules"
	defaultTiersTable     = "fee_tiers"
)

// PostgresProvider resolves the fee schedule from fee_schedules/fee_tiers,
// picking the latest schedule effective at query time.
type PostgresProvider struct {
	db             *sql.DB
	schedulesTable string
	tiersTable     string
}

// PostgresOption configures the provider.
type PostgresOption func(*PostgresProvider)

// WithSchedulesTable overrides the schedules table name.
func WithSchedulesTable(table string) PostgresOption {
	return func(p *PostgresProvider) {
		if table != "" {
			p.schedulesTable = table
		}
	}
}

// WithTiersTable overrides the tiers table name.
func WithTiersTable(table string) PostgresOption {
	return func(p *PostgresProvider) {
		if table != "" {
			p.tiersTable = table
		}
	}
}

// NewPostgresProvider constructs a provider.
func NewPostgresProvider(db *sql.DB, opts ...PostgresOption) *PostgresProvider {
	p := &PostgresProvider{
		db:             db,
		schedulesTable: defaultSchedulesTable,
		tiersTable:     defaultTiersTable,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Schedule loads the schedule effective now.
func (p *PostgresProvider) Schedule(ctx context.Context) (pricing.FeeSchedule, error) {
	if p == nil || p.db == nil {
		return pricing.FeeSchedule{}, errors.New("fee schedule provider: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, currency, first_booking_fee_bps, platform_fee_cap_minor,
       stripe_var_bps, stripe_fixed_minor, min_guest_total_minor
FROM %s
WHERE effective_from <= $1
ORDER BY effective_from DESC
LIMIT 1`, p.schedulesTable)

	var scheduleID string
	schedule := pricing.FeeSchedule{}
	row := p.db.QueryRowContext(ctx, query, time.Now().UTC())
	if err := row.Scan(
		&scheduleID,
		&schedule.Currency,
		&schedule.FirstBookingFeeBps,
		&schedule.PlatformFeeCapMinor,
		&schedule.StripeVarBps,
		&schedule.StripeFixedMinor,
		&schedule.MinGuestTotalMinor,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pricing.FeeSchedule{}, errors.New("fee schedule provider: no effective schedule")
		}
		return pricing.FeeSchedule{}, err
	}

	tiers, err := p.loadTiers(ctx, scheduleID)
	if err != nil {
		return pricing.FeeSchedule{}, err
	}
	schedule.Tiers = tiers

	if err := schedule.Validate(); err != nil {
		return pricing.FeeSchedule{}, err
	}
	return schedule, nil
}

func (p *PostgresProvider) loadTiers(ctx context.Context, scheduleID string) ([]pricing.Tier, error) {
	query := fmt.Sprintf(`
SELECT min_nights, max_nights, platform_fee_bps
FROM %s
WHERE schedule_id = $1
ORDER BY min_nights ASC`, p.tiersTable)

	rows, err := p.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []pricing.Tier
	for rows.Next() {
		var tier pricing.Tier
		if err := rows.Scan(&tier.MinNights, &tier.MaxNights, &tier.PlatformFeeBps); err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}
	return tiers, rows.Err()
}
