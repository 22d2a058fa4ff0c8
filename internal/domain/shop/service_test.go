package shop

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/tx/txtest"
	"bakerypos/internal/domain"
)

type memRepo struct {
	stored *Profile
	saves  int
}

func (m *memRepo) Get(context.Context) (*Profile, error) {
	if m.stored == nil {
		return nil, apperror.NewNotFound("shop profile", "")
	}
	cp := *m.stored
	return &cp, nil
}

func (m *memRepo) Save(_ context.Context, p *Profile) error {
	current := 0
	if m.stored != nil {
		current = m.stored.Version
	}
	if p.Version != current {
		return apperror.NewConcurrentModification("shop profile", p.ID)
	}
	p.Version++
	cp := *p
	m.stored = &cp
	m.saves++
	return nil
}

type auditLog struct{ actions []domain.AuditAction }

func (a *auditLog) Record(_ context.Context, _ string, _ id.ID, action domain.AuditAction, _ any) error {
	a.actions = append(a.actions, action)
	return nil
}

var defaults = Profile{Name: "Bakery", Currency: "Rs.", ReceiptFooter: "Thank you, come again!"}

func newService() (*Service, *memRepo, *auditLog) {
	repo := &memRepo{}
	audit := &auditLog{}
	svc := NewService(Config{
		Repo:      repo,
		Defaults:  defaults,
		TxManager: txtest.New(),
		Audit:     audit,
		Now:       func() time.Time { return time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC) },
	})
	return svc, repo, audit
}

func str(s string) *string { return &s }

func TestProfile_DefaultsUntilSaved(t *testing.T) {
	svc, repo, _ := newService()

	p, err := svc.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bakery", p.Name)
	assert.Equal(t, 0, p.Version)
	assert.Zero(t, repo.saves)

	p.Name = "changed"
	again, err := svc.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bakery", again.Name, "defaults are copied")
}

func TestUpdate(t *testing.T) {
	svc, repo, audit := newService()
	ctx := context.Background()

	p, err := svc.Update(ctx, UpdateInput{
		Name:          str(" Corner Bakery "),
		Phone:         str("011 234 5678"),
		ReceiptFooter: str("See you tomorrow"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Corner Bakery", p.Name)
	assert.Equal(t, "Rs.", p.Currency, "unset fields keep the default")
	assert.Equal(t, 1, p.Version)
	assert.False(t, id.IsNil(p.ID))
	assert.Equal(t, []domain.AuditAction{domain.AuditUpdate}, audit.actions)

	p, err = svc.Update(ctx, UpdateInput{Email: str("hello@corner.lk"), Version: 1})
	require.NoError(t, err)
	assert.Equal(t, "Corner Bakery", p.Name)
	assert.Equal(t, "hello@corner.lk", p.Email)
	assert.Equal(t, 2, p.Version)
	assert.Equal(t, 2, repo.saves)

	stored, err := svc.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "See you tomorrow", stored.ReceiptFooter)
}

func TestUpdate_Rejections(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()

	tests := []struct {
		name string
		in   UpdateInput
		code string
	}{
		{"blank name", UpdateInput{Name: str("  ")}, apperror.CodeValidation},
		{"bad email", UpdateInput{Email: str("not-an-email")}, apperror.CodeValidation},
		{"long currency", UpdateInput{Currency: str("RUPEES-LKR-X")}, apperror.CodeValidation},
		{"stale version", UpdateInput{Name: str("X"), Version: 3}, apperror.CodeConcurrentModification},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(ctx, tt.in)
			assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
		})
	}
	assert.Zero(t, repo.saves)
}

func TestValidate_ReportsJSONFieldName(t *testing.T) {
	p := defaults
	p.Email = "nope"

	err := p.Validate(context.Background())
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "email", appErr.Details["field"])
	assert.Equal(t, "email", appErr.Details["rule"])
}
