package entities

import "time"

// Visit represents a single recorded visit to a link.
// All metadata fields are best-effort and may be nil.
type Visit struct {
	ID             string     `json:"id"` // UUID
	LinkID         int64      `json:"link_id"`
	IP             *string    `json:"ip,omitempty"`
	UserAgent      *string    `json:"user_agent,omitempty"`
	Referer        *string    `json:"referer,omitempty"`
	Country        *string    `json:"country,omitempty"`
	City           *string    `json:"city,omitempty"`
	Region         *string    `json:"region,omitempty"`
	OS             *string    `json:"os,omitempty"`
	DeviceType     *string    `json:"device_type,omitempty"`
	Browser        *string    `json:"browser,omitempty"`
	BrowserVersion *string    `json:"browser_version,omitempty"`
	Language       *string    `json:"language,omitempty"`
	VisitedAt      time.Time  `json:"visited_at"`
}
