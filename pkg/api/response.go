package api

// AskResponse is the body returned by a successful POST /ask call.
type AskResponse struct {
	Answer  string   `json:"answer"`  // Generated answer text
	Sources []string `json:"sources"` // Labels of the documents the answer was grounded on
}
