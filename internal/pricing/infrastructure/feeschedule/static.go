package feeschedule

import (
	"context"

	pricing "staybook/internal/pricing/domain"
)

// StaticProvider serves a fixed fee schedule resolved at startup.
type StaticProvider struct {
	schedule pricing.FeeSchedule
}

// NewStaticProvider constructs the provider.
func NewStaticProvider(schedule pricing.FeeSchedule) (*StaticProvider, error) {
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	return &StaticProvider{schedule: schedule}, nil
}

// Schedule returns the configured schedule.
func (p *StaticProvider) Schedule(ctx context.Context) (pricing.FeeSchedule, error) {
	_ = ctx
	return p.schedule, nil
}
