package reputation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"scamwall/internal/detector"
	"scamwall/internal/model"
)

// 高资费号段前缀，诈骗短信常诱导回拨
var premiumRatePrefixes = []string{
	"0906", "0907", "0908", "0909", // UK premium rate
	"1900", "1976", // US/CA premium rate
}

// PhoneAnalyzer 电话号码信誉分析器
type PhoneAnalyzer struct {
	cache Cache
}

// NewPhoneAnalyzer 创建电话号码信誉分析器
func NewPhoneAnalyzer(cache Cache) *PhoneAnalyzer {
	return &PhoneAnalyzer{cache: cache}
}

// Name 检测器名称
func (p *PhoneAnalyzer) Name() string {
	return detector.DetectorPhoneRep
}

// Detect 校验号码格式并识别高资费号段
func (p *PhoneAnalyzer) Detect(ctx context.Context, input detector.Input) ([]detector.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := strings.TrimSpace(input.Sender)
	if raw == "" {
		return nil, fmt.Errorf("phone number is empty")
	}

	normalized := normalizeNumber(raw)

	if p.cache != nil {
		if record, err := p.cache.FindByAddress(normalized, model.ReputationKindPhone); err == nil && record != nil {
			return p.outputs(record.Valid, record.Detail), nil
		}
	}

	valid := len(normalized) >= 7 && len(normalized) <= 15
	numberType := classifyNumber(normalized)

	if p.cache != nil {
		_ = p.cache.CreateOrUpdate(&model.ReputationRecord{
			Address:   normalized,
			Kind:      model.ReputationKindPhone,
			Valid:     valid,
			Detail:    numberType,
			CheckedAt: time.Now(),
		})
	}

	return p.outputs(valid, numberType), nil
}

// normalizeNumber 去掉分隔符，只保留数字和前导加号
func normalizeNumber(raw string) string {
	var b strings.Builder
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// classifyNumber 粗粒度号码类型判定
func classifyNumber(number string) string {
	digits := strings.TrimPrefix(number, "+")
	for _, prefix := range premiumRatePrefixes {
		if strings.HasPrefix(digits, prefix) {
			return "premium_rate"
		}
	}
	return "standard"
}

func (p *PhoneAnalyzer) outputs(valid bool, numberType string) []detector.Output {
	if !valid {
		return []detector.Output{{Label: "invalid phone number format"}}
	}
	if numberType == "premium_rate" {
		conf := 0.8
		return []detector.Output{{
			Label:      "premium-rate callback number",
			Confidence: &conf,
		}}
	}
	return []detector.Output{{Label: "phone number has no negative reputation"}}
}
