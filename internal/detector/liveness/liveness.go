package liveness

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
)

// FrameAnalysis 单帧分析结果。
// FaceDetected为false表示画面里没有可分析对象，调用方据此抑制广播，
// 不通过error表达"没有发现"
type FrameAnalysis struct {
	FaceDetected bool
	IsReal       bool
	Confidence   float64
	Explanation  string
}

// Analyzer 视频帧活体检测协作方
type Analyzer interface {
	AnalyzeFrame(ctx context.Context, frame []byte) (*FrameAnalysis, error)
}

// HeuristicAnalyzer 基于像素统计的轻量实现。
// 真实部署时替换为外部人脸模型，接口不变
type HeuristicAnalyzer struct {
	skinRatioThreshold float64
	varianceThreshold  float64
}

// NewHeuristicAnalyzer 创建启发式帧分析器
func NewHeuristicAnalyzer() *HeuristicAnalyzer {
	return &HeuristicAnalyzer{
		skinRatioThreshold: 0.08,
		varianceThreshold:  12.0,
	}
}

// AnalyzeFrame 解码图像并做肤色占比与亮度方差分析。
// 图像不可解码返回error，由上层按非法输入处理
func (h *HeuristicAnalyzer) AnalyzeFrame(ctx context.Context, frame []byte) (*FrameAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("frame payload is empty")
	}

	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("undecodable frame: %w", err)
	}

	skinRatio, variance := sampleStats(img)

	// 肤色像素占比过低视为画面中没有人脸
	if skinRatio < h.skinRatioThreshold {
		return &FrameAnalysis{FaceDetected: false}, nil
	}

	// 亮度方差过低常见于翻拍屏幕或静态照片
	isReal := variance >= h.varianceThreshold
	confidence := 0.5 + math.Min(0.45, math.Abs(variance-h.varianceThreshold)/100)

	explanation := "Liveness check passed."
	if !isReal {
		explanation = "Liveness check failed (potential spoof)."
	}

	return &FrameAnalysis{
		FaceDetected: true,
		IsReal:       isReal,
		Confidence:   round2(confidence),
		Explanation:  explanation,
	}, nil
}

// sampleStats 按固定步长采样，返回肤色占比和亮度标准差
func sampleStats(img image.Image) (float64, float64) {
	bounds := img.Bounds()
	stepX := maxInt(1, bounds.Dx()/64)
	stepY := maxInt(1, bounds.Dy()/64)

	var total, skin int
	var sum, sumSq float64

	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, _ := img.At(x, y).RGBA()
			r8, g8, b8 := float64(r>>8), float64(g>>8), float64(b>>8)

			total++
			if isSkinTone(r8, g8, b8) {
				skin++
			}

			luma := 0.299*r8 + 0.587*g8 + 0.114*b8
			sum += luma
			sumSq += luma * luma
		}
	}

	if total == 0 {
		return 0, 0
	}

	mean := sum / float64(total)
	variance := sumSq/float64(total) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return float64(skin) / float64(total), math.Sqrt(variance)
}

// isSkinTone RGB空间的经典肤色判定
func isSkinTone(r, g, b float64) bool {
	return r > 95 && g > 40 && b > 20 &&
		r > g && r > b &&
		math.Abs(r-g) > 15 &&
		(maxF(r, g, b)-minF(r, g, b)) > 15
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func maxF(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}

func minF(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
