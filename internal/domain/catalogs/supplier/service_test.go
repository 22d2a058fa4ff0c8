package supplier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bakerypos/internal/core/apperror"
	"bakerypos/internal/core/entity"
	"bakerypos/internal/core/id"
	"bakerypos/internal/core/tx/txtest"
	"bakerypos/internal/domain"
)

type memRepo struct {
	items map[id.ID]*Supplier
}

func (m *memRepo) Create(_ context.Context, s *Supplier) error {
	m.items[s.ID] = s
	return nil
}

func (m *memRepo) GetByID(_ context.Context, supplierID id.ID) (*Supplier, error) {
	s, ok := m.items[supplierID]
	if !ok {
		return nil, apperror.NewNotFound("supplier", supplierID.String())
	}
	return s, nil
}

func (m *memRepo) Update(_ context.Context, s *Supplier) error {
	m.items[s.ID] = s
	return nil
}

func (m *memRepo) SetStatus(_ context.Context, supplierID id.ID, status entity.Status) error {
	m.items[supplierID].Status = status
	return nil
}

func (m *memRepo) List(context.Context, domain.ListFilter) (domain.ListResult[*Supplier], error) {
	return domain.ListResult[*Supplier]{}, nil
}

func (m *memRepo) Exists(_ context.Context, supplierID id.ID) (bool, error) {
	_, ok := m.items[supplierID]
	return ok, nil
}

func (m *memRepo) FindByName(_ context.Context, name string) (*Supplier, error) {
	for _, s := range m.items {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, apperror.NewNotFound("supplier", name)
}

type auditLog struct{ actions []domain.AuditAction }

func (a *auditLog) Record(_ context.Context, _ string, _ id.ID, action domain.AuditAction, _ any) error {
	a.actions = append(a.actions, action)
	return nil
}

func TestSupplier_Validate(t *testing.T) {
	s := NewSupplier("Flour Mill Ltd")
	bad := "not-an-email"
	s.Email = &bad
	assert.True(t, apperror.HasCode(s.Validate(context.Background()), apperror.CodeValidation))

	good := "orders@mill.example"
	s.Email = &good
	assert.NoError(t, s.Validate(context.Background()))

	s.Name = "  "
	assert.True(t, apperror.HasCode(s.Validate(context.Background()), apperror.CodeValidation))
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{items: map[id.ID]*Supplier{}}
	audit := &auditLog{}
	svc := NewService(repo, txtest.New(), audit)

	mill := NewSupplier("Flour Mill Ltd")
	require.NoError(t, svc.Create(ctx, mill))

	err := svc.Create(ctx, NewSupplier("Flour Mill Ltd"))
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))

	mill.Address = ptr("12 Wheat Rd")
	require.NoError(t, svc.Update(ctx, mill), "own name is not a duplicate")

	require.NoError(t, svc.Deactivate(ctx, mill.ID))
	got, err := svc.GetByID(ctx, mill.ID)
	require.NoError(t, err, "inactive suppliers stay readable")
	assert.Equal(t, entity.StatusInactive, got.Status)

	assert.Equal(t, []domain.AuditAction{domain.AuditCreate, domain.AuditUpdate, domain.AuditDeactivate}, audit.actions)

	_, err = svc.GetByID(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func ptr(s string) *string { return &s }
