package entity

import "time"

// User representa un usuario del sistema. Los usuarios de directorio no tienen PasswordHash local.
type User struct {
	ID           string
	Username     string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	OfficeID     string
	ApproverID   string
	IsDirectory  bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
