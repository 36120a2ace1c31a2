package company

import (
	"context"
	"fmt"

	"go-expense/internal/common/apperr"
)

type CompanyService interface {
	Get(ctx context.Context, id string) (*Company, error)
	// DefaultCurrency is the conversion target for expense intake
	DefaultCurrency(ctx context.Context, id string) (string, error)
	UpdateSettings(ctx context.Context, id string, settings Settings) error
}

type CompanyServiceImpl struct {
	Repo CompanyRepository
}

func NewCompanyService(repo CompanyRepository) CompanyService {
	return &CompanyServiceImpl{Repo: repo}
}

func (s *CompanyServiceImpl) Get(ctx context.Context, id string) (*Company, error) {
	company, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("company %s: %w", id, apperr.ErrNotFound)
	}
	return company, nil
}

func (s *CompanyServiceImpl) DefaultCurrency(ctx context.Context, id string) (string, error) {
	company, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return company.DefaultCurrency, nil
}

func (s *CompanyServiceImpl) UpdateSettings(ctx context.Context, id string, settings Settings) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.Repo.UpdateSettings(ctx, id, settings)
}
