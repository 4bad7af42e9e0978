package forms

import "github.com/dmitrijs2005/hospivibe/internal/client/models"

type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,role"`
}

type Signup struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,role"`
}

// ValidateLogin checks the login form and returns the parsed role.
// An empty role defaults to patient.
func (fv *Validator) ValidateLogin(f Login) (models.Role, error) {
	if f.Role == "" {
		f.Role = string(models.RolePatient)
	}
	if err := fv.Struct(f); err != nil {
		return "", err
	}
	return models.ParseRole(f.Role)
}

// ValidateSignup is ValidateLogin plus a required name.
func (fv *Validator) ValidateSignup(f Signup) (models.Role, error) {
	if f.Role == "" {
		f.Role = string(models.RolePatient)
	}
	if err := fv.Struct(f); err != nil {
		return "", err
	}
	return models.ParseRole(f.Role)
}
