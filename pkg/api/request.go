// Package api provides the wire representations of the medical chatbot backend's
// question-answering, transcription and status endpoints.
package api

// AskRequest is the body of a POST /ask call.
type AskRequest struct {
	Query       string  `json:"query"`        // The user's question, may be empty when an image is sent
	ImageBase64 *string `json:"image_base64"` // Optional image as a data URL; serialized as null when absent
}

// NewAskRequest builds an AskRequest, leaving ImageBase64 nil when image is empty.
func NewAskRequest(query, image string) AskRequest {
	req := AskRequest{Query: query}
	if image != "" {
		req.ImageBase64 = &image
	}
	return req
}
