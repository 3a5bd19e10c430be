package api

// TranscribeRequest is the body of a POST /transcribe call.
type TranscribeRequest struct {
	AudioBase64 string `json:"audio_base64"` // Base64-encoded audio, optionally as a data URL
}

// TranscribeResponse is the body returned by POST /transcribe.
type TranscribeResponse struct {
	Text string `json:"text"`
}
