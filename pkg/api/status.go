package api

// StatusResponse is the body returned by GET / on the backend.
type StatusResponse struct {
	Message   string            `json:"message"`   // Human readable banner
	Status    string            `json:"status"`    // "active" when the service is up
	Features  []string          `json:"features"`  // e.g. "text", "vision", "voice"
	Endpoints map[string]string `json:"endpoints"` // Endpoint name to path
}
