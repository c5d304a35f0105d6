package entity

import "time"

// Worker is a worker profile, resolved or created on first use.
// Identity is (name, employer).
type Worker struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Employer  string    `json:"employer"`
	Trade     string    `json:"trade"`
	CreatedAt time.Time `json:"created_at"`
}
