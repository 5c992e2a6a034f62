package services

import "context"

// ---------------------------------------------------------------------------
// TTSService — common interface for text-to-speech providers
// Both ElevenLabs and Cartesia implement this interface so the worker
// can use whichever is configured without knowing the underlying provider.
// ---------------------------------------------------------------------------

// TTSResponse is the common response type from any TTS provider.
type TTSResponse struct {
	AudioData  []byte
	DurationMs int
	Format     string // "mp3", "wav", etc.
}

// TTSService is the interface that any TTS provider must implement.
type TTSService interface {
	// GenerateSpeech converts a voiceover script to audio. voiceStyle is a
	// human-readable delivery hint (e.g., "upbeat and confident"); the
	// provider may or may not use it. voiceID overrides the provider's
	// default voice when non-empty.
	GenerateSpeech(ctx context.Context, text, voiceStyle, voiceID string) (*TTSResponse, error)
}
