package shop

import (
	"context"
	"fmt"
	"time"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/tx"
	"bakerypos/internal/domain"
	"bakerypos/pkg/logger"
)

// Service reads and edits the shop profile.
type Service struct {
	repo      Repository
	defaults  Profile
	txManager tx.Manager
	audit     domain.Auditor
	now       func() time.Time
}

// Config wires the Service. Defaults is served until the profile is first saved.
type Config struct {
	Repo      Repository
	Defaults  Profile
	TxManager tx.Manager
	Audit     domain.Auditor
	Now       func() time.Time
}

// NewService creates the shop profile service.
func NewService(cfg Config) *Service {
	s := &Service{
		repo:      cfg.Repo,
		defaults:  cfg.Defaults,
		txManager: cfg.TxManager,
		audit:     cfg.Audit,
		now:       cfg.Now,
	}
	s.defaults.Version = 0
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Profile returns the stored profile, or the defaults when none was saved.
func (s *Service) Profile(ctx context.Context) (*Profile, error) {
	p, err := s.repo.Get(ctx)
	if apperror.IsNotFound(err) {
		d := s.defaults
		return &d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shop profile: %w", err)
	}
	return p, nil
}

// Update edits the profile. A non-zero in.Version must match the stored one.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*Profile, error) {
	var p *Profile
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.Profile(ctx)
		if err != nil {
			return err
		}
		if in.Version != 0 && in.Version != p.Version {
			return apperror.NewConcurrentModification("shop profile", p.ID)
		}

		in.apply(p)
		if err := p.Validate(ctx); err != nil {
			return err
		}
		if id.IsNil(p.ID) {
			p.ID = id.New()
		}
		p.UpdatedAt = s.now().UTC()

		if err := s.repo.Save(ctx, p); err != nil {
			return err
		}
		if s.audit == nil {
			return nil
		}
		return s.audit.Record(ctx, "shop_profile", p.ID, domain.AuditUpdate, p)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "shop profile updated", "name", p.Name, "version", p.Version)
	return p, nil
}
