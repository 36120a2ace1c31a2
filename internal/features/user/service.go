package user

import (
	"context"
	"fmt"

	"go-expense/internal/common/apperr"
	common_models "go-expense/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService interface {
	Get(ctx context.Context, id string) (*User, error)
	// GetManager resolves an employee's manager, nil when none is assigned
	GetManager(ctx context.Context, employeeID string) (*User, error)
	ListCompanyUsers(ctx context.Context, companyID string, excludeUserID string) ([]User, error)
	UpdateRole(ctx context.Context, id string, role common_models.Role) (*User, error)
	UpdateStatus(ctx context.Context, id string, isActive bool) (*User, error)
}

type UserServiceImpl struct {
	Repo UserRepository
}

func NewUserService(repo UserRepository) UserService {
	return &UserServiceImpl{Repo: repo}
}

func (s *UserServiceImpl) Get(ctx context.Context, id string) (*User, error) {
	user, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", id, apperr.ErrNotFound)
	}
	return user, nil
}

func (s *UserServiceImpl) GetManager(ctx context.Context, employeeID string) (*User, error) {
	employee, err := s.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if employee.Manager == nil {
		return nil, nil
	}
	return s.Get(ctx, employee.Manager.Hex())
}

func (s *UserServiceImpl) ListCompanyUsers(ctx context.Context, companyID string, excludeUserID string) ([]User, error) {
	cid, err := primitive.ObjectIDFromHex(companyID)
	if err != nil {
		return nil, err
	}
	users, err := s.Repo.ListByCompany(ctx, cid)
	if err != nil {
		return nil, err
	}

	filtered := make([]User, 0, len(users))
	for _, u := range users {
		if u.ID.Hex() == excludeUserID {
			continue
		}
		filtered = append(filtered, u)
	}
	return filtered, nil
}

func (s *UserServiceImpl) UpdateRole(ctx context.Context, id string, role common_models.Role) (*User, error) {
	if !common_models.IsValidRole(role) {
		return nil, apperr.NewValidation(apperr.FieldError{Field: "role", Message: "must be employee, manager, or admin"})
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *UserServiceImpl) UpdateStatus(ctx context.Context, id string, isActive bool) (*User, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateStatus(ctx, id, isActive); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
