package accounts

import (
	"context"
	"errors"
	"strings"
)

// Service exposes chart of accounts operations.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Account, error) {
	return s.repo.GetByID(ctx, id)
}

// Create inserts a new account after validating the spec.
func (s *Service) Create(ctx context.Context, spec Spec) (Account, error) {
	if err := validateSpec(spec); err != nil {
		return Account{}, err
	}
	return s.repo.Insert(ctx, spec)
}

// FindOrCreate resolves an account by code, creating it lazily from the spec.
// Entry builders use this for standard accounts such as income summary.
func (s *Service) FindOrCreate(ctx context.Context, spec Spec) (Account, error) {
	acc, err := s.repo.GetByCode(ctx, spec.Code)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return Account{}, err
	}
	if err := validateSpec(spec); err != nil {
		return Account{}, err
	}
	acc, err = s.repo.Insert(ctx, spec)
	if errors.Is(err, ErrDuplicateCode) {
		// Lost a create race; the account exists now.
		return s.repo.GetByCode(ctx, spec.Code)
	}
	return acc, err
}

// Deactivate gates the account out of new postings without deleting history.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.SetActive(ctx, id, false)
}

func validateSpec(spec Spec) error {
	if strings.TrimSpace(spec.Code) == "" {
		return errors.New("accounts: code required")
	}
	if strings.TrimSpace(spec.Name) == "" {
		return errors.New("accounts: name required")
	}
	switch spec.Type {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
	default:
		return errors.New("accounts: unknown account type")
	}
	return nil
}
