package api

// ErrorResponse represents an error body from the backend. The backend reports
// failures in a "detail" field.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
