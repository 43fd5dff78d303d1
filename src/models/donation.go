package models

import "time"

const DonationStatusCompleted = "completed"

// Donation amounts are stored in minor currency units (kopecks).
type Donation struct {
	ID             uint      `db:"id"`
	OrganizationID uint      `db:"organization_id"`
	ProjectID      *uint     `db:"project_id"`
	MemberID       *uint     `db:"member_id"`
	Amount         int64     `db:"amount"`
	Status         string    `db:"status"`
	PaymentMethod  string    `db:"payment_method"`
	CreatedAt      time.Time `db:"created_at"`
}
