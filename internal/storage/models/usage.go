package models

// UsageDay is a per-owner daily aggregate of gateway traffic.
type UsageDay struct {
	Date         string `json:"date"` // YYYY-MM-DD
	OwnerID      string `json:"ownerId"`
	RequestCount int64  `json:"requestCount"`
	ErrorCount   int64  `json:"errorCount"`
}
