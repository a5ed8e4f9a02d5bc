package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleAdmin   = 1
	RoleManager = 2
	RoleViewer  = 3
)

var roleNames = map[int]string{
	RoleAdmin:   "admin",
	RoleManager: "manager",
	RoleViewer:  "viewer",
}

func RoleName(roleID int) string {
	if name, ok := roleNames[roleID]; ok {
		return name
	}
	return "unknown"
}

type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Active       bool   `json:"active"`
	RoleID       int    `json:"roleId"`
	Role         string `json:"role"`
}

type Claims struct {
	UserID     int
	UserName   string
	UserEmail  string
	UserRoleID int
	jwt.RegisteredClaims
}
