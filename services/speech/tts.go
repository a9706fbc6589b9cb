package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ttsClient = &http.Client{Timeout: 8 * time.Second}

const (
	defaultVoiceID = "EXAVITQu4vr4xnSDxMaL"
	ttsModelID     = "eleven_monolingual_v1"
)

// Synthesizer renders assistant replies as audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// ElevenLabsTTS calls the ElevenLabs HTTP API and returns MP3 bytes.
type ElevenLabsTTS struct {
	APIKey  string
	VoiceID string
}

func (s *ElevenLabsTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	voice := s.VoiceID
	if voice == "" {
		voice = defaultVoiceID
	}

	body, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": ttsModelID,
		"voice_settings": map[string]any{
			"stability":         0.5,
			"similarity_boost":  0.5,
			"style":             0.0,
			"use_speaker_boost": true,
		},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("https://api.elevenlabs.io/v1/text-to-speech/%s", voice)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.APIKey)

	resp, err := ttsClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("text to speech request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("text to speech returned status %d: %s", resp.StatusCode, snippet)
	}
	return io.ReadAll(resp.Body)
}
