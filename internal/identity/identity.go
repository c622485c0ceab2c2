package identity

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleLecturer Role = "lecturer"
)

// Identity is the per-request caller: an email-like identifier plus a role.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Provider resolves a login attempt into an Identity. The workflow depends
// only on this interface so a verified provider can replace the demo one.
type Provider interface {
	Resolve(email, name string) (Identity, error)
}

// DemoProvider derives the role from a substring match on the email. This is
// a placeholder, not a security boundary.
type DemoProvider struct{}

var adminMarkers = []string{"admin", "coordinator", "manager"}

func (DemoProvider) Resolve(email, name string) (Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return Identity{}, fiber.NewError(fiber.StatusBadRequest, "email is required")
	}

	if name == "" {
		name = "Demo Lecturer"
	}

	role := RoleLecturer
	for _, marker := range adminMarkers {
		if strings.Contains(email, marker) {
			role = RoleAdmin
			break
		}
	}

	return Identity{Name: name, Email: email, Role: role}, nil
}
