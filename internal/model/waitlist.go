package model

import "time"

// swagger:model
type WaitlistEntry struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joinedAt"`
}
