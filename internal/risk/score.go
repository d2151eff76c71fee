package risk

import (
	"strings"

	"scamwall/internal/model"
)

// riskIndicator 风险指标，按finding文本子串匹配
type riskIndicator struct {
	match         string  // 匹配子串，finding文本已小写
	weight        int     // 命中加分
	minConfidence float64 // 大于0时要求置信度达到该值才计分
}

// 指标表按严重程度排序，单条finding取第一个命中的指标
var riskIndicators = []riskIndicator{
	{match: "phishing", weight: 35},
	{match: "scam", weight: 35},
	{match: "deepfake", weight: 30, minConfidence: 0.5},
	{match: "spoof", weight: 30, minConfidence: 0.5},
	{match: "disposable email", weight: 25},
	{match: "high-risk keyword", weight: 20},
	{match: "premium-rate", weight: 15},
	{match: "suspicious link", weight: 15},
}

const maxScore = 100

// Score 聚合findings得到[0,100]的风险分和离散等级。
// 逐条加权求和后截断，空输入恒为(0, LOW)
func Score(findings []model.Finding) (int, model.RiskLevel) {
	score := 0
	for _, f := range findings {
		score += weightOf(f)
	}
	if score > maxScore {
		score = maxScore
	}
	return score, LevelOf(score)
}

// weightOf 单条finding的分值贡献
func weightOf(f model.Finding) int {
	text := strings.ToLower(f.Text())

	// 诊断性finding不计分
	if strings.Contains(text, "analysis_unavailable") {
		return 0
	}

	for _, indicator := range riskIndicators {
		if !strings.Contains(text, indicator.match) {
			continue
		}
		if indicator.minConfidence > 0 {
			if f.Confidence == nil || *f.Confidence < indicator.minConfidence {
				continue
			}
		}
		return indicator.weight
	}
	return 0
}

// LevelOf 分数到等级的固定阈值表
func LevelOf(score int) model.RiskLevel {
	switch {
	case score <= 0:
		return model.RiskLevelLow
	case score < 40:
		return model.RiskLevelMedium
	case score < 70:
		return model.RiskLevelHigh
	default:
		return model.RiskLevelCritical
	}
}
