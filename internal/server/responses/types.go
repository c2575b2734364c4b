// Package responses defines API request and response bodies that are not
// catalog records.
package responses

import "time"

// ValidateUserRequest is the body of POST /api/validate-user.
type ValidateUserRequest struct {
	Username string `json:"username"`
	APIKey   string `json:"api_key"`
}

// ValidateUserResponse reports whether the pair matched. APIKey echoes the
// key only when it did.
type ValidateUserResponse struct {
	Valid  bool   `json:"valid"`
	APIKey string `json:"api_key,omitempty"`
}

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Storage   string    `json:"storage"`
	Corpus    string    `json:"corpus,omitempty"` // last audit result, once one has run
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
}
