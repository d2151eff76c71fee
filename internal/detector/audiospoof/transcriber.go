package audiospoof

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Transcriber 语音转写协作方
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// HTTPTranscriber 调用外部转写服务的实现
type HTTPTranscriber struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPTranscriber 创建HTTP转写客户端
func NewHTTPTranscriber(endpoint string, timeout time.Duration) *HTTPTranscriber {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPTranscriber{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// transcribeResponse 转写服务响应结构
type transcribeResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// Transcribe 上传音频并返回转写文本
func (t *HTTPTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if t.endpoint == "" {
		return "", fmt.Errorf("transcription service not configured")
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("audio payload is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(audio))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Filename", filename)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var result transcribeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("invalid transcription response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("transcription service error: %s", result.Error)
	}
	return result.Text, nil
}
