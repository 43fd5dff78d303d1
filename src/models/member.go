package models

import "time"

// Member is an organization supporter record. Source is the acquisition
// channel reported at signup and may be empty.
type Member struct {
	ID             uint       `db:"id"`
	OrganizationID uint       `db:"organization_id"`
	Name           string     `db:"name"`
	Email          string     `db:"email"`
	Source         string     `db:"source"`
	IsActive       bool       `db:"is_active"`
	LastActiveAt   *time.Time `db:"last_active_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}
