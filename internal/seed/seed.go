// Package seed pre-populates verified universities.
package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/skillproof/backend/internal/models"
	"github.com/skillproof/backend/internal/store"
)

// University is one seed entry.
type University struct {
	Name     string
	Location string
	Domain   string
}

// Summary counts what a seeding run did.
type Summary struct {
	Created  int
	Verified int
	Skipped  int
}

// Universities creates each university as verified, or verifies an existing
// unverified one. Already verified entries are left untouched. Every entry is
// written in its own transaction so one bad domain does not block the rest.
func Universities(ctx context.Context, st store.Store, list []University, logger *zap.Logger) (Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var sum Summary
	for _, u := range list {
		domain, err := models.NormalizeDomain(u.Domain)
		if err != nil {
			return sum, fmt.Errorf("seed %s: %w", u.Name, err)
		}
		err = st.RunInTx(ctx, func(s store.Stores) error {
			if err := s.Locks.LockDomain(ctx, models.OrgKindUniversity, domain); err != nil {
				return err
			}
			now := time.Now().UTC()
			org, created, err := s.Organizations.FindOrCreateByDomain(ctx, models.OrgKindUniversity, domain, models.OrganizationDefaults{
				Name:     u.Name,
				Location: u.Location,
				Verified: true,
				Now:      now,
			})
			if err != nil {
				return err
			}
			switch {
			case created:
				sum.Created++
				logger.Info("university created", zap.String("domain", domain), zap.String("name", u.Name))
			case !org.IsVerified:
				if _, err := s.Organizations.MarkVerified(ctx, org.ID, now); err != nil {
					return err
				}
				sum.Verified++
				logger.Info("university verified", zap.String("domain", domain))
			default:
				sum.Skipped++
			}
			return nil
		})
		if err != nil {
			return sum, fmt.Errorf("seed %s: %w", domain, err)
		}
	}
	return sum, nil
}
