package accounts

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	byCode     map[string]Account
	nextID     int64
	raceOnce   bool
	insertErrs []error
}

func newStubRepo() *stubRepo {
	return &stubRepo{byCode: make(map[string]Account), nextID: 1}
}

func (r *stubRepo) List(_ context.Context) ([]Account, error) {
	out := make([]Account, 0, len(r.byCode))
	for _, a := range r.byCode {
		out = append(out, a)
	}
	return out, nil
}

func (r *stubRepo) GetByID(_ context.Context, id int64) (Account, error) {
	for _, a := range r.byCode {
		if a.ID == id {
			return a, nil
		}
	}
	return Account{}, fmt.Errorf("%w: id %d", ErrAccountNotFound, id)
}

func (r *stubRepo) GetByCode(_ context.Context, code string) (Account, error) {
	if a, ok := r.byCode[code]; ok {
		return a, nil
	}
	return Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, code)
}

func (r *stubRepo) Insert(_ context.Context, spec Spec) (Account, error) {
	if len(r.insertErrs) > 0 {
		err := r.insertErrs[0]
		r.insertErrs = r.insertErrs[1:]
		if err != nil {
			if r.raceOnce {
				// Simulate a concurrent insert winning the race.
				r.byCode[spec.Code] = Account{ID: 999, Code: spec.Code, Name: spec.Name, Type: spec.Type, IsActive: true}
				r.raceOnce = false
			}
			return Account{}, err
		}
	}
	if _, ok := r.byCode[spec.Code]; ok {
		return Account{}, fmt.Errorf("%w: %s", ErrDuplicateCode, spec.Code)
	}
	acc := Account{ID: r.nextID, Code: spec.Code, Name: spec.Name, Type: spec.Type, Subtype: spec.Subtype, IsActive: true}
	r.nextID++
	r.byCode[spec.Code] = acc
	return acc, nil
}

func (r *stubRepo) SetActive(_ context.Context, id int64, active bool) error {
	for code, a := range r.byCode {
		if a.ID == id {
			a.IsActive = active
			r.byCode[code] = a
			return nil
		}
	}
	return fmt.Errorf("%w: id %d", ErrAccountNotFound, id)
}

func TestCreateValidates(t *testing.T) {
	svc := NewService(newStubRepo())

	_, err := svc.Create(context.Background(), Spec{Code: "", Name: "Cash", Type: AccountTypeAsset})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), Spec{Code: "1000", Name: "Cash", Type: "WEIRD"})
	require.Error(t, err)

	acc, err := svc.Create(context.Background(), Spec{Code: "1000", Name: "Cash", Type: AccountTypeAsset, Subtype: SubtypeCash})
	require.NoError(t, err)
	require.True(t, acc.IsActive)
}

func TestFindOrCreateExisting(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	first, err := svc.FindOrCreate(context.Background(), SpecIncomeSummary)
	require.NoError(t, err)
	second, err := svc.FindOrCreate(context.Background(), SpecIncomeSummary)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestFindOrCreateLostRace(t *testing.T) {
	repo := newStubRepo()
	repo.raceOnce = true
	repo.insertErrs = []error{fmt.Errorf("%w: %s", ErrDuplicateCode, SpecMiscExpense.Code)}
	svc := NewService(repo)

	acc, err := svc.FindOrCreate(context.Background(), SpecMiscExpense)
	require.NoError(t, err)
	require.Equal(t, int64(999), acc.ID)
}

func TestDeactivate(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	acc, err := svc.Create(context.Background(), Spec{Code: "2100", Name: "Payable", Type: AccountTypeLiability})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(context.Background(), acc.ID))

	got, err := svc.Get(context.Background(), acc.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)

	require.Error(t, svc.Deactivate(context.Background(), 404))
}
