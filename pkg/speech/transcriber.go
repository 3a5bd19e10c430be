package speech

import (
	"context"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"
)

// BackendClient is the part of the backend client used for transcription.
type BackendClient interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// RemoteTranscriber sends recorded audio to the chatbot backend's /transcribe endpoint.
type RemoteTranscriber struct {
	backend BackendClient
}

// NewRemoteTranscriber creates a RemoteTranscriber.
func NewRemoteTranscriber(backend BackendClient) *RemoteTranscriber {
	return &RemoteTranscriber{backend: backend}
}

// Transcribe uploads the file at audioPath.
func (t *RemoteTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("reading audio file: %w", err)
	}

	text, err := t.backend.Transcribe(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("transcribing with backend: %w", err)
	}

	return text, nil
}

// WhisperTranscriber transcribes with OpenAI's Whisper API.
type WhisperTranscriber struct {
	api   *openai.Client
	model string
}

// NewWhisperTranscriber creates a WhisperTranscriber. An empty baseURL uses the
// public OpenAI API and an empty model uses whisper-1.
func NewWhisperTranscriber(token, baseURL, model string) *WhisperTranscriber {
	cfg := openai.DefaultConfig(token)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.Whisper1
	}

	return &WhisperTranscriber{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

// Transcribe uploads the file at audioPath to Whisper.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	req := openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
	}
	resp, err := t.api.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("creating transcription: %w", err)
	}

	return resp.Text, nil
}
