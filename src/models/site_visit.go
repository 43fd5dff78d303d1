package models

import "time"

// SiteVisit is a per-day visitor counter rolled up by the tracking pixel.
type SiteVisit struct {
	ID             uint      `db:"id"`
	OrganizationID uint      `db:"organization_id"`
	Date           time.Time `db:"date"`
	UniqueVisitors int64     `db:"unique_visitors"`
}
