package dto

// ── auth ──

// LoginRequest login by CPF
type LoginRequest struct {
	CPF      string `json:"cpf"      binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest self-service password change
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}
