package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"custody-tracker/internal/dto"
	"custody-tracker/internal/model"
	"custody-tracker/internal/repository"
	"custody-tracker/pkg/cpf"
)

// ── user module errors ──

var (
	ErrUserSelfRoleChange = errors.New("cannot change your own role")
	ErrUserSelfDeactivate = errors.New("cannot deactivate yourself")
	ErrUserSelfReset      = errors.New("use the change-password endpoint for your own account")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrUserCPFExists      = errors.New("a user with this CPF already exists")
	ErrUserEmailExists    = errors.New("a user with this e-mail already exists")
	ErrInvalidUserCPF     = errors.New("invalid CPF")
	ErrPasswordTooShort   = errors.New("password must have at least 8 characters")
	ErrInvalidRole        = errors.New("role must be admin or lawyer")
)

const minPasswordLength = 8

// UserService operator accounts and their alert opt-in
type UserService interface {
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	GetNotificationPreference(ctx context.Context, userID string) (*dto.NotificationPreferenceResponse, error)
	SetNotificationPreference(ctx context.Context, userID string, req *dto.NotificationPreferenceRequest) (*dto.NotificationPreferenceResponse, error)

	// admin only
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.AdminUpdateUserRequest, callerID string) (*dto.UserResponse, error)
	ResetPassword(ctx context.Context, id string, req *dto.AdminResetPasswordRequest, callerID string) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── self service ──────────────────────

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		if err := s.applyEmail(ctx, user, *req.Email); err != nil {
			return nil, err
		}
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("update profile failed", zap.String("id", userID), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrWrongPassword
	}
	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("change password failed", zap.String("id", userID), zap.Error(err))
		return err
	}
	return nil
}

// GetNotificationPreference an absent row reads as opted out
func (s *userService) GetNotificationPreference(ctx context.Context, userID string) (*dto.NotificationPreferenceResponse, error) {
	if _, err := s.load(ctx, userID); err != nil {
		return nil, err
	}
	pref, err := s.repo.NotificationPreference.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.NotificationPreferenceResponse{EmailAlerts: false}, nil
		}
		s.logger.Error("load notification preference failed", zap.String("id", userID), zap.Error(err))
		return nil, err
	}
	return &dto.NotificationPreferenceResponse{EmailAlerts: pref.EmailAlerts}, nil
}

func (s *userService) SetNotificationPreference(ctx context.Context, userID string, req *dto.NotificationPreferenceRequest) (*dto.NotificationPreferenceResponse, error) {
	if _, err := s.load(ctx, userID); err != nil {
		return nil, err
	}
	pref := &model.NotificationPreference{UserID: userID, EmailAlerts: *req.EmailAlerts}
	if err := s.repo.NotificationPreference.Upsert(ctx, pref); err != nil {
		s.logger.Error("store notification preference failed", zap.String("id", userID), zap.Error(err))
		return nil, err
	}
	return &dto.NotificationPreferenceResponse{EmailAlerts: pref.EmailAlerts}, nil
}

// ────────────────────── admin ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	digits := cpf.Normalize(req.CPF)
	if !cpf.Valid(digits) {
		return nil, ErrInvalidUserCPF
	}
	if _, err := s.repo.User.GetByCPF(ctx, digits); err == nil {
		return nil, ErrUserCPFExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleLawyer
	}
	if role != model.RoleAdmin && role != model.RoleLawyer {
		return nil, ErrInvalidRole
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FullName:     strings.TrimSpace(req.FullName),
		CPF:          digits,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if req.Email != nil {
		if err := s.applyEmail(ctx, user, *req.Email); err != nil {
			return nil, err
		}
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("create user failed", zap.Error(err))
		return nil, err
	}
	s.logger.Info("user created", zap.String("id", user.UserID), zap.String("role", user.Role))
	return toUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	offset, limit := req.Normalize()
	users, total, err := s.repo.User.List(ctx, offset, limit)
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, *toUserResponse(&users[i]))
	}
	return result, total, nil
}

func (s *userService) Update(ctx context.Context, id string, req *dto.AdminUpdateUserRequest, callerID string) (*dto.UserResponse, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil && *req.Role != user.Role {
		if id == callerID {
			return nil, ErrUserSelfRoleChange
		}
		if *req.Role != model.RoleAdmin && *req.Role != model.RoleLawyer {
			return nil, ErrInvalidRole
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil && *req.IsActive != user.IsActive {
		if id == callerID && !*req.IsActive {
			return nil, ErrUserSelfDeactivate
		}
		user.IsActive = *req.IsActive
	}
	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		if err := s.applyEmail(ctx, user, *req.Email); err != nil {
			return nil, err
		}
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("update user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) ResetPassword(ctx context.Context, id string, req *dto.AdminResetPasswordRequest, callerID string) error {
	if id == callerID {
		return ErrUserSelfReset
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("reset password failed", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("password reset by admin", zap.String("id", id), zap.String("by", callerID))
	return nil
}

// ── helpers ──

func (s *userService) load(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// applyEmail sets or clears the address, rejecting one held by another user
func (s *userService) applyEmail(ctx context.Context, user *model.User, raw string) error {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		user.Email = nil
		return nil
	}
	existing, err := s.repo.User.GetByEmail(ctx, email)
	if err == nil && existing.UserID != user.UserID {
		return ErrUserEmailExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	user.Email = &email
	return nil
}

func hashPassword(plain string) (string, error) {
	if len(plain) < minPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
