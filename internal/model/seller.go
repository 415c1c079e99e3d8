package model

import (
	"time"

	"github.com/google/uuid"
)

// Seller is a register operator. Authentication itself lives in an external
// collaborator; this row backs the JWT subject and owns bills and customers.
type Seller struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	PasswordHash string    `gorm:"not null"`
	Active       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
