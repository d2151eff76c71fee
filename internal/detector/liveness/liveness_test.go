package liveness

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeFrame 按像素函数生成64x64的png测试帧
func encodeFrame(t *testing.T, pixel func(x, y int) color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, pixel(x, y))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var skinTone = color.RGBA{R: 200, G: 120, B: 90, A: 255}

func TestAnalyzeFrameUndecodable(t *testing.T) {
	_, err := NewHeuristicAnalyzer().AnalyzeFrame(context.Background(), []byte("definitely not an image"))
	assert.Error(t, err)
}

func TestAnalyzeFrameEmpty(t *testing.T) {
	_, err := NewHeuristicAnalyzer().AnalyzeFrame(context.Background(), nil)
	assert.Error(t, err)
}

func TestAnalyzeFrameNoFace(t *testing.T) {
	// 全蓝画面，不含肤色像素
	frame := encodeFrame(t, func(x, y int) color.RGBA {
		return color.RGBA{R: 10, G: 30, B: 200, A: 255}
	})

	analysis, err := NewHeuristicAnalyzer().AnalyzeFrame(context.Background(), frame)
	require.NoError(t, err)
	assert.False(t, analysis.FaceDetected)
}

func TestAnalyzeFrameFlatSpoof(t *testing.T) {
	// 全肤色且亮度完全均匀，判定为翻拍
	frame := encodeFrame(t, func(x, y int) color.RGBA {
		return skinTone
	})

	analysis, err := NewHeuristicAnalyzer().AnalyzeFrame(context.Background(), frame)
	require.NoError(t, err)
	assert.True(t, analysis.FaceDetected)
	assert.False(t, analysis.IsReal)
	assert.GreaterOrEqual(t, analysis.Confidence, 0.5)
	assert.Contains(t, analysis.Explanation, "spoof")
}

func TestAnalyzeFrameRealFace(t *testing.T) {
	// 半幅肤色加高对比纹理，亮度方差足够大
	frame := encodeFrame(t, func(x, y int) color.RGBA {
		if y%2 == 0 {
			return skinTone
		}
		if x%2 == 0 {
			return color.RGBA{A: 255}
		}
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	})

	analysis, err := NewHeuristicAnalyzer().AnalyzeFrame(context.Background(), frame)
	require.NoError(t, err)
	assert.True(t, analysis.FaceDetected)
	assert.True(t, analysis.IsReal)
	assert.LessOrEqual(t, analysis.Confidence, 0.95)
	assert.Equal(t, "Liveness check passed.", analysis.Explanation)
}

func TestAnalyzeFrameCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHeuristicAnalyzer().AnalyzeFrame(ctx, []byte{0x01})
	assert.Error(t, err)
}
