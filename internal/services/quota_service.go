package services

import (
	"context"
	"log"
	"time"

	"github.com/Mj26111999/pern-saas-api-builder/internal/models"
	"github.com/Mj26111999/pern-saas-api-builder/internal/repositories"
)

// QuotaResult carries the admission decision plus remediation hints. ResetAt
// is a rolling 24h display hint; the authoritative reset boundary for
// admission is midnight UTC.
type QuotaResult struct {
	Allowed bool      `json:"allowed"`
	Count   int64     `json:"count"`
	Limit   int       `json:"limit"`
	ResetAt time.Time `json:"reset_at"`
}

// QuotaService decides whether a resolved tenant may proceed based on the
// count of usage records since the start of the current UTC calendar day.
type QuotaService interface {
	Check(ctx context.Context, identity *models.ResolvedIdentity) (*QuotaResult, error)
}

type quotaService struct {
	usageRepo repositories.UsageRepository
	now       func() time.Time
}

func NewQuotaService(usageRepo repositories.UsageRepository) QuotaService {
	return &quotaService{
		usageRepo: usageRepo,
		now:       time.Now,
	}
}

func (s *quotaService) Check(ctx context.Context, identity *models.ResolvedIdentity) (*QuotaResult, error) {
	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	limit := identity.RateLimit

	count, err := s.usageRepo.CountSince(ctx, identity.Tenant.ID, dayStart)
	if err != nil {
		// Fail open: a persistence outage must not lock every tenant out.
		log.Printf("Quota count failed for tenant %s, admitting request: %v", identity.Tenant.ID.String(), err)
		return &QuotaResult{Allowed: true, Count: 0, Limit: limit, ResetAt: now.Add(24 * time.Hour)}, nil
	}

	return &QuotaResult{
		Allowed: count < int64(limit),
		Count:   count,
		Limit:   limit,
		ResetAt: now.Add(24 * time.Hour),
	}, nil
}
