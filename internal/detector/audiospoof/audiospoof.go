package audiospoof

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"scamwall/internal/detector"
)

// SpoofDetector 音频伪造检测器。
// 配置了模型服务时走HTTP调用，否则退化为占位判定
type SpoofDetector struct {
	endpoint   string
	httpClient *http.Client
}

// NewSpoofDetector 创建音频伪造检测器
func NewSpoofDetector(endpoint string, timeout time.Duration) *SpoofDetector {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &SpoofDetector{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name 检测器名称
func (s *SpoofDetector) Name() string {
	return detector.DetectorAudioSpoof
}

// spoofResponse 模型服务响应结构
type spoofResponse struct {
	IsSpoof    bool    `json:"is_spoof"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
	Error      string  `json:"error"`
}

// Detect 检测音频是否为合成或重放伪造
func (s *SpoofDetector) Detect(ctx context.Context, input detector.Input) ([]detector.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(input.Audio) == 0 {
		return nil, fmt.Errorf("audio payload is empty")
	}

	// 未配置模型服务时按原型逻辑占位：标记疑似伪造，置信度固定
	if s.endpoint == "" {
		conf := 0.85
		return []detector.Output{{
			Label:      "spoof suspected, no trained audio model configured",
			Confidence: &conf,
			Extra:      map[string]string{"indicators": "placeholder"},
		}}, nil
	}

	result, err := s.callModel(ctx, input.Audio, input.Filename)
	if err != nil {
		return nil, err
	}

	conf := result.Confidence
	if result.IsSpoof {
		return []detector.Output{{
			Label:      fmt.Sprintf("spoof detected, model label: %s", result.Label),
			Confidence: &conf,
			Extra:      map[string]string{"indicators": "spectral_artifacts_detected"},
		}}, nil
	}
	return []detector.Output{{
		Label:      "audio appears genuine",
		Confidence: &conf,
	}}, nil
}

func (s *SpoofDetector) callModel(ctx context.Context, audio []byte, filename string) (*spoofResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(audio))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Filename", filename)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spoof model request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spoof model returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result spoofResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("invalid spoof model response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("spoof model error: %s", result.Error)
	}
	return &result, nil
}
