package service

import (
	"context"
	"errors"
	"os"
	"time"

	"salesops/internal/model"
	"salesops/internal/policy"
	"salesops/internal/repository"
	"salesops/pkg/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type CreateAccountRequest struct {
	Username    string   `json:"username" binding:"required"`
	FullName    string   `json:"full_name"`
	Email       string   `json:"email" binding:"required,email"`
	Phone       string   `json:"phone"`
	Password    string   `json:"password" binding:"required,min=6"`
	Role        string   `json:"role" binding:"required"`
	StateIDs    []string `json:"state_ids"`
	DistrictIDs []string `json:"district_ids"`
	OfficeIDs   []string `json:"office_ids"`
}

type UpdateAccountRequest struct {
	FullName    *string  `json:"full_name"`
	Email       string   `json:"email" binding:"omitempty,email"`
	Phone       *string  `json:"phone"`
	Role        string   `json:"role"`
	IsActive    *bool    `json:"is_active"`
	IsVerified  *bool    `json:"is_verified"`
	StateIDs    []string `json:"state_ids"`
	DistrictIDs []string `json:"district_ids"`
	OfficeIDs   []string `json:"office_ids"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	Role         string `json:"role"`
	Dashboard    string `json:"dashboard"`
}

// AccountResponse returns an account without exposing sensitive data
type AccountResponse struct {
	ID         uuid.UUID        `json:"id"`
	Username   string           `json:"username"`
	FullName   string           `json:"full_name"`
	Email      string           `json:"email"`
	Phone      string           `json:"phone"`
	Role       string           `json:"role"`
	IsActive   bool             `json:"is_active"`
	IsVerified bool             `json:"is_verified"`
	Dashboard  string           `json:"dashboard"`
	States     []model.State    `json:"states,omitempty"`
	Districts  []model.District `json:"districts,omitempty"`
	Offices    []model.Office   `json:"offices,omitempty"`
	CreatedAt  string           `json:"created_at"`
	UpdatedAt  string           `json:"updated_at"`
}

// AccountService defines the business logic around accounts and auth.
type AccountService interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error)
	Logout(ctx context.Context, accountID uuid.UUID) error
	CreateAccount(ctx context.Context, p policy.Principal, req CreateAccountRequest) (*AccountResponse, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*AccountResponse, error)
	ListAccounts(ctx context.Context, p policy.Principal, role, search string, page, limit int) ([]AccountResponse, int64, error)
	UpdateAccount(ctx context.Context, p policy.Principal, id uuid.UUID, req UpdateAccountRequest) (*AccountResponse, error)
	DeleteAccount(ctx context.Context, p policy.Principal, id uuid.UUID) error
	Lookup(ctx context.Context, p policy.Principal, role, nameFragment string) ([]AccountResponse, error)
}

type accountService struct {
	repo   repository.AccountRepository
	tokens repository.TokenRepository
	geo    repository.GeographyRepository
}

func NewAccountService(repo repository.AccountRepository, tokens repository.TokenRepository, geo repository.GeographyRepository) AccountService {
	return &accountService{repo: repo, tokens: tokens, geo: geo}
}

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key" // development fallback only
	}
	return []byte(secret)
}

func signAccessToken(account *model.Account) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  account.ID.String(),
		"role": account.Role,
		"exp":  time.Now().Add(accessTokenTTL).Unix(),
	})
	return token.SignedString(jwtSecret())
}

func mapAccount(account *model.Account) *AccountResponse {
	return &AccountResponse{
		ID:         account.ID,
		Username:   account.Username,
		FullName:   account.FullName,
		Email:      account.Email,
		Phone:      account.Phone,
		Role:       account.Role,
		IsActive:   account.IsActive,
		IsVerified: account.IsVerified,
		Dashboard:  account.DashboardPath(),
		States:     account.States,
		Districts:  account.Districts,
		Offices:    account.Offices,
		CreatedAt:  account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  account.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *accountService) issueTokens(ctx context.Context, account *model.Account) (*TokenResponse, error) {
	accessToken, err := signAccessToken(account)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	refresh := &model.RefreshToken{
		AccountID: account.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.tokens.Create(ctx, refresh); err != nil {
		return nil, err
	}

	return &TokenResponse{
		Token:        accessToken,
		RefreshToken: refresh.Token,
		Role:         account.Role,
		Dashboard:    account.DashboardPath(),
	}, nil
}

func (s *accountService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	account, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, errors.New("invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid username or password")
	}

	if !account.IsActive {
		return nil, apperr.ErrDenied
	}

	return s.issueTokens(ctx, account)
}

func (s *accountService) RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error) {
	stored, err := s.tokens.GetByToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.tokens.Delete(ctx, stored.ID)
		return nil, errors.New("refresh token expired")
	}

	account, err := s.repo.GetByID(ctx, stored.AccountID)
	if err != nil || !account.IsActive {
		return nil, errors.New("invalid refresh token")
	}

	// Rotate: the old refresh token is single-use.
	if err := s.tokens.Delete(ctx, stored.ID); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, account)
}

func (s *accountService) Logout(ctx context.Context, accountID uuid.UUID) error {
	return s.tokens.DeleteByAccount(ctx, accountID)
}

func parseIDs(raw []string, field string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, apperr.Validation("invalid %s id %q", field, r)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *accountService) assignGeography(ctx context.Context, account *model.Account, stateIDs, districtIDs, officeIDs []string) error {
	sIDs, err := parseIDs(stateIDs, "state")
	if err != nil {
		return err
	}
	dIDs, err := parseIDs(districtIDs, "district")
	if err != nil {
		return err
	}
	oIDs, err := parseIDs(officeIDs, "office")
	if err != nil {
		return err
	}

	states, err := s.geo.GetStates(ctx, sIDs)
	if err != nil {
		return err
	}
	districts, err := s.geo.GetDistricts(ctx, dIDs)
	if err != nil {
		return err
	}
	offices, err := s.geo.GetOffices(ctx, oIDs)
	if err != nil {
		return err
	}
	return s.repo.ReplaceGeography(ctx, account, states, districts, offices)
}

func (s *accountService) CreateAccount(ctx context.Context, p policy.Principal, req CreateAccountRequest) (*AccountResponse, error) {
	if err := policy.RequireRole(p, model.RoleAdmin); err != nil {
		return nil, err
	}

	if !model.ValidRole(req.Role) {
		return nil, apperr.Validation("invalid role %q", req.Role)
	}

	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, apperr.Validation("username already exists")
	}
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Validation("email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	account := &model.Account{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: string(hashedPassword),
		Role:     req.Role,
		IsActive: true,
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	if len(req.StateIDs)+len(req.DistrictIDs)+len(req.OfficeIDs) > 0 {
		if err := s.assignGeography(ctx, account, req.StateIDs, req.DistrictIDs, req.OfficeIDs); err != nil {
			return nil, err
		}
	}

	created, err := s.repo.GetByID(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	return mapAccount(created), nil
}

func (s *accountService) GetAccount(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return mapAccount(account), nil
}

func (s *accountService) ListAccounts(ctx context.Context, p policy.Principal, role, search string, page, limit int) ([]AccountResponse, int64, error) {
	if err := policy.RequireRole(p, model.RoleAdmin); err != nil {
		return nil, 0, err
	}

	accounts, total, err := s.repo.List(ctx, role, search, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, *mapAccount(&accounts[i]))
	}
	return responses, total, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, p policy.Principal, id uuid.UUID, req UpdateAccountRequest) (*AccountResponse, error) {
	if err := policy.RequireRole(p, model.RoleAdmin); err != nil {
		return nil, err
	}

	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	if req.Role != "" {
		if !model.ValidRole(req.Role) {
			return nil, apperr.Validation("invalid role %q", req.Role)
		}
		account.Role = req.Role
	}
	if req.Email != "" && req.Email != account.Email {
		if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
			return nil, apperr.Validation("email already exists")
		}
		account.Email = req.Email
	}
	if req.FullName != nil {
		account.FullName = *req.FullName
	}
	if req.Phone != nil {
		account.Phone = *req.Phone
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	if req.IsVerified != nil {
		account.IsVerified = *req.IsVerified
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}

	if req.StateIDs != nil || req.DistrictIDs != nil || req.OfficeIDs != nil {
		if err := s.assignGeography(ctx, account, req.StateIDs, req.DistrictIDs, req.OfficeIDs); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapAccount(updated), nil
}

// Lookup powers the auto-suggest pickers on the profile, target and task
// forms. Only active accounts are returned.
func (s *accountService) Lookup(ctx context.Context, p policy.Principal, role, nameFragment string) ([]AccountResponse, error) {
	if err := policy.RequireRole(p, model.RoleAdmin, model.RoleZoneManager, model.RoleAreaSalesManager); err != nil {
		return nil, err
	}
	if !model.ValidRole(role) {
		return nil, apperr.Validation("invalid role %q", role)
	}
	accounts, err := s.repo.SearchByRole(ctx, role, nameFragment, true)
	if err != nil {
		return nil, err
	}
	responses := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, *mapAccount(&accounts[i]))
	}
	return responses, nil
}

func (s *accountService) DeleteAccount(ctx context.Context, p policy.Principal, id uuid.UUID) error {
	if err := policy.RequireRole(p, model.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.repo.Delete(ctx, id)
}
