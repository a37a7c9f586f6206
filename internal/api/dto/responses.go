// Package dto provides Data Transfer Objects for API responses.
package dto

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// FetchErrorResponse is the body returned when a collection could not be read.
// The message is fixed; the failure stage is only logged.
type FetchErrorResponse struct {
	Error string `json:"error" example:"Failed to fetch products"`
}

// FetchFailedMessage is the message of every FetchErrorResponse.
const FetchFailedMessage = "Failed to fetch products"

// NewFetchErrorResponse returns the generic collection fetch error body.
func NewFetchErrorResponse() FetchErrorResponse {
	return FetchErrorResponse{Error: FetchFailedMessage}
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status     string            `json:"status"`
	Database   string            `json:"database,omitempty" example:"pantry"`
	Components map[string]string `json:"components,omitempty"`
}

// StatusResponse represents a readiness or liveness response.
type StatusResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}
