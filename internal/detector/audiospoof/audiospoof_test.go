package audiospoof

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scamwall/internal/detector"
)

func TestDetectEmptyAudio(t *testing.T) {
	_, err := NewSpoofDetector("", 0).Detect(context.Background(), detector.Input{})
	assert.Error(t, err)
}

func TestDetectPlaceholderWithoutEndpoint(t *testing.T) {
	outputs, err := NewSpoofDetector("", 0).Detect(context.Background(), detector.Input{Audio: []byte{0x01}})
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, "spoof suspected, no trained audio model configured", outputs[0].Label)
	require.NotNil(t, outputs[0].Confidence)
	assert.InDelta(t, 0.85, *outputs[0].Confidence, 1e-9)
}

func TestDetectModelSpoof(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "call.wav", r.Header.Get("X-Filename"))
		w.Write([]byte(`{"is_spoof":true,"confidence":0.92,"label":"synthetic_voice"}`))
	}))
	defer server.Close()

	outputs, err := NewSpoofDetector(server.URL, 0).Detect(context.Background(), detector.Input{
		Audio:    []byte{0x01, 0x02},
		Filename: "call.wav",
	})
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, "spoof detected, model label: synthetic_voice", outputs[0].Label)
	assert.InDelta(t, 0.92, *outputs[0].Confidence, 1e-9)
}

func TestDetectModelGenuine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"is_spoof":false,"confidence":0.88}`))
	}))
	defer server.Close()

	outputs, err := NewSpoofDetector(server.URL, 0).Detect(context.Background(), detector.Input{Audio: []byte{0x01}})
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, "audio appears genuine", outputs[0].Label)
}

func TestDetectModelError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"model overloaded"}`))
	}))
	defer server.Close()

	_, err := NewSpoofDetector(server.URL, 0).Detect(context.Background(), detector.Input{Audio: []byte{0x01}})
	assert.Error(t, err)
}

func TestDetectModelBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewSpoofDetector(server.URL, 0).Detect(context.Background(), detector.Input{Audio: []byte{0x01}})
	assert.Error(t, err)
}

func TestTranscribeUnconfigured(t *testing.T) {
	_, err := NewHTTPTranscriber("", 0).Transcribe(context.Background(), []byte{0x01}, "call.wav")
	assert.Error(t, err)
}

func TestTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "call.wav", r.Header.Get("X-Filename"))
		w.Write([]byte(`{"text":"hello this is your bank"}`))
	}))
	defer server.Close()

	text, err := NewHTTPTranscriber(server.URL, 0).Transcribe(context.Background(), []byte{0x01}, "call.wav")
	require.NoError(t, err)
	assert.Equal(t, "hello this is your bank", text)
}
