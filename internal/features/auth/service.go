package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-expense/internal/common/apperr"
	common_models "go-expense/internal/common/models"
	"go-expense/internal/features/company"
	"go-expense/internal/features/rule"
	"go-expense/internal/features/user"
	"go-expense/pkg/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type RegisterCompanyInput struct {
	CompanyName string `json:"companyName"`
	Country     string `json:"country"`
	Currency    string `json:"currency"`
	AdminName   string `json:"adminName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type RegisterEmployeeInput struct {
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	Password      string             `json:"password"`
	Role          common_models.Role `json:"role"`
	Department    string             `json:"department"`
	ManagerID     string             `json:"managerId"`
	ApprovalLimit float64            `json:"approvalLimit"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult carries the issued token together with the authenticated user.
type AuthResult struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

type Profile struct {
	User          *user.User       `json:"user"`
	Manager       *user.User       `json:"manager,omitempty"`
	DirectReports []user.User      `json:"directReports,omitempty"`
	Company       *company.Company `json:"company,omitempty"`
}

type AuthService interface {
	// RegisterCompany creates a company with its admin account and seeds
	// the default approval rules.
	RegisterCompany(ctx context.Context, input RegisterCompanyInput) (*AuthResult, error)
	// RegisterEmployee creates a user inside the admin's company.
	RegisterEmployee(ctx context.Context, companyID string, input RegisterEmployeeInput) (*user.User, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)
}

type AuthServiceImpl struct {
	Users     user.UserRepository
	Companies company.CompanyRepository
	Rules     rule.RuleService
	Logger    *zap.Logger
}

func NewAuthService(users user.UserRepository, companies company.CompanyRepository, rules rule.RuleService, logger *zap.Logger) AuthService {
	return &AuthServiceImpl{
		Users:     users,
		Companies: companies,
		Rules:     rules,
		Logger:    logger,
	}
}

func validateRegisterCompany(input RegisterCompanyInput) error {
	fields := make([]apperr.FieldError, 0)
	if input.CompanyName == "" {
		fields = append(fields, apperr.FieldError{Field: "companyName", Message: "is required"})
	}
	if input.AdminName == "" {
		fields = append(fields, apperr.FieldError{Field: "adminName", Message: "is required"})
	}
	if input.Email == "" {
		fields = append(fields, apperr.FieldError{Field: "email", Message: "is required"})
	}
	if len(input.Password) < 6 {
		fields = append(fields, apperr.FieldError{Field: "password", Message: "must be at least 6 characters"})
	}
	if input.Currency != "" && !company.IsSupportedCurrency(input.Currency) {
		fields = append(fields, apperr.FieldError{Field: "currency", Message: "unsupported currency " + input.Currency})
	}
	if len(fields) > 0 {
		return apperr.NewValidation(fields...)
	}
	return nil
}

func (s *AuthServiceImpl) RegisterCompany(ctx context.Context, input RegisterCompanyInput) (*AuthResult, error) {
	if err := validateRegisterCompany(input); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	existing, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.NewValidation(apperr.FieldError{Field: "email", Message: "already registered"})
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	now := time.Now()
	comp := &company.Company{
		ID:              primitive.NewObjectID(),
		Name:            input.CompanyName,
		Country:         input.Country,
		DefaultCurrency: currency,
		Settings:        company.DefaultSettings(),
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Companies.Create(ctx, comp); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	admin := &user.User{
		ID:        primitive.NewObjectID(),
		Name:      input.AdminName,
		Email:     email,
		Password:  string(hash),
		Role:      common_models.RoleAdmin,
		Company:   comp.ID,
		Currency:  currency,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Users.Create(ctx, admin); err != nil {
		return nil, err
	}

	if err := s.Companies.SetAdminUser(ctx, comp.ID.Hex(), admin.ID); err != nil {
		return nil, err
	}

	if err := s.Rules.SeedDefaults(ctx, comp.ID); err != nil {
		// registration already succeeded, the admin can create rules manually
		s.Logger.Error("failed to seed default approval rules",
			zap.String("company_id", comp.ID.Hex()), zap.Error(err))
	}

	token, err := utils.GenerateToken(admin.ID, comp.ID, admin.Role)
	if err != nil {
		return nil, err
	}

	s.Logger.Info("company registered",
		zap.String("company_id", comp.ID.Hex()),
		zap.String("admin_id", admin.ID.Hex()))

	return &AuthResult{Token: token, User: admin}, nil
}

func (s *AuthServiceImpl) RegisterEmployee(ctx context.Context, companyID string, input RegisterEmployeeInput) (*user.User, error) {
	fields := make([]apperr.FieldError, 0)
	if input.Name == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "is required"})
	}
	if input.Email == "" {
		fields = append(fields, apperr.FieldError{Field: "email", Message: "is required"})
	}
	if len(input.Password) < 6 {
		fields = append(fields, apperr.FieldError{Field: "password", Message: "must be at least 6 characters"})
	}
	if input.Role == "" {
		input.Role = common_models.RoleEmployee
	}
	if !common_models.IsValidRole(input.Role) {
		fields = append(fields, apperr.FieldError{Field: "role", Message: "must be employee, manager, or admin"})
	}
	if len(fields) > 0 {
		return nil, apperr.NewValidation(fields...)
	}

	cid, err := primitive.ObjectIDFromHex(companyID)
	if err != nil {
		return nil, err
	}
	comp, err := s.Companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if comp == nil {
		return nil, fmt.Errorf("company %s: %w", companyID, apperr.ErrNotFound)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	existing, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.NewValidation(apperr.FieldError{Field: "email", Message: "already registered"})
	}

	var managerID *primitive.ObjectID
	if input.ManagerID != "" {
		manager, err := s.Users.FindByID(ctx, input.ManagerID)
		if err != nil {
			return nil, err
		}
		if manager == nil || manager.Company != cid {
			return nil, apperr.NewValidation(apperr.FieldError{Field: "managerId", Message: "manager not found in company"})
		}
		managerID = &manager.ID
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &user.User{
		ID:            primitive.NewObjectID(),
		Name:          input.Name,
		Email:         email,
		Password:      string(hash),
		Role:          input.Role,
		Company:       cid,
		Department:    input.Department,
		EmployeeID:    "EMP-" + uuid.NewString()[:8],
		Currency:      comp.DefaultCurrency,
		Manager:       managerID,
		ApprovalLimit: input.ApprovalLimit,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}

	if managerID != nil {
		if err := s.Users.AddDirectReport(ctx, *managerID, u.ID); err != nil {
			s.Logger.Warn("failed to add direct report",
				zap.String("manager_id", managerID.Hex()), zap.Error(err))
		}
	}

	s.Logger.Info("employee registered",
		zap.String("company_id", companyID),
		zap.String("user_id", u.ID.Hex()),
		zap.String("role", string(u.Role)))

	return u, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	u, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperr.ErrNotAuthorized)
	}
	if !u.IsActive {
		return nil, fmt.Errorf("account is deactivated: %w", apperr.ErrNotAuthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(input.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperr.ErrNotAuthorized)
	}

	now := time.Now()
	if err := s.Users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.Logger.Warn("failed to update last login", zap.String("user_id", u.ID.Hex()), zap.Error(err))
	}
	u.LastLogin = &now

	token, err := utils.GenerateToken(u.ID, u.Company, u.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *AuthServiceImpl) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", userID, apperr.ErrNotFound)
	}

	profile := &Profile{User: u}

	if u.Manager != nil {
		manager, err := s.Users.FindByID(ctx, u.Manager.Hex())
		if err != nil {
			return nil, err
		}
		profile.Manager = manager
	}
	if len(u.DirectReports) > 0 {
		reports, err := s.Users.FindByIDs(ctx, u.DirectReports)
		if err != nil {
			return nil, err
		}
		profile.DirectReports = reports
	}

	comp, err := s.Companies.GetByID(ctx, u.Company.Hex())
	if err != nil {
		return nil, err
	}
	profile.Company = comp

	return profile, nil
}
