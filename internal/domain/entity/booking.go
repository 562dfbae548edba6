package entity

import "time"

// BookingInfo is the read-only view of the originating booking, fetched from
// the booking collaborator for context display. Never used for transition
// validation.
type BookingInfo struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"`
	ScheduledTime time.Time `json:"scheduled_time"`
	Amount        float64   `json:"amount"`
	CustomerID    string    `json:"customer_id"`
	ProviderID    string    `json:"provider_id"`
}
