// backend/models/api_models.go
package models

import "time"

// Availability is the result of probing the BCN site.
type Availability struct {
	Available bool   `json:"available"`
	Status    int    `json:"status"`
	Message   string `json:"message"`
}

// APIResponse is the envelope every JSON endpoint answers with.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Message   string      `json:"message,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
