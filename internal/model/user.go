package model

import "time"

const (
	RoleBuyer  = "buyer"
	RoleFarmer = "farmer"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"` // buyer, farmer
	Provider     string    `json:"provider"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func ValidRole(role string) bool {
	return role == RoleBuyer || role == RoleFarmer
}
