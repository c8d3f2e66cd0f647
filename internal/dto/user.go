package dto

// ── users ──

// CreateUserRequest admin creates an operator
type CreateUserRequest struct {
	FullName string  `json:"full_name" binding:"required,min=2,max=255"`
	CPF      string  `json:"cpf"       binding:"required"`
	Email    *string `json:"email"     binding:"omitempty,email"`
	Password string  `json:"password"  binding:"required,min=8,max=72"`
	Role     string  `json:"role"      binding:"omitempty,oneof=admin lawyer"`
}

// UpdateProfileRequest a user edits their own profile
type UpdateProfileRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,min=2,max=255"`
	Email    *string `json:"email"     binding:"omitempty,email"`
}

// AdminUpdateUserRequest admin edits any user
type AdminUpdateUserRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,min=2,max=255"`
	Email    *string `json:"email"     binding:"omitempty,email"`
	Role     *string `json:"role"      binding:"omitempty,oneof=admin lawyer"`
	IsActive *bool   `json:"is_active"`
}

// AdminResetPasswordRequest admin sets a new password for another user
type AdminResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// UserListRequest admin user list
type UserListRequest struct {
	PaginationRequest
}

// NotificationPreferenceRequest alert digest opt-in
type NotificationPreferenceRequest struct {
	EmailAlerts *bool `json:"email_alerts" binding:"required"`
}
