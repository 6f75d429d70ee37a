package auth

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	EmployeeNumber string `json:"employeeNumber" validate:"required,max=20"`
	Password       string `json:"password" validate:"required,max=128"`
}

// ChangePasswordRequest is the body of POST /api/auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,max=72"`
}
