package normalize

import (
	"strings"

	"scamwall/internal/detector"
	"scamwall/internal/model"
)

// Output 把一条检测器原始输出转成Finding。
// 文本在这里统一小写，下游匹配不再重复做大小写折叠
func Output(source string, out detector.Output) model.Finding {
	label := strings.ToLower(strings.TrimSpace(out.Label))
	if label == "" {
		return Failure(source, "empty detector output")
	}
	return model.Finding{
		Source:     strings.ToLower(source),
		Label:      label,
		Confidence: out.Confidence,
	}
}

// Failure 把检测器失败记录为诊断性Finding，保留失败可见性
func Failure(source, cause string) model.Finding {
	cause = strings.ToLower(strings.TrimSpace(cause))
	if cause == "" {
		cause = "unknown"
	}
	return model.Finding{
		Source: strings.ToLower(source),
		Label:  "analysis_unavailable: " + cause,
	}
}

// Outputs 归一化一次检测器调用的完整结果。
// err非nil或没有任何输出时产出单条诊断性Finding，本函数永不失败
func Outputs(source string, outs []detector.Output, err error) []model.Finding {
	if err != nil {
		return []model.Finding{Failure(source, err.Error())}
	}
	if len(outs) == 0 {
		return []model.Finding{Failure(source, "no usable signal")}
	}

	findings := make([]model.Finding, 0, len(outs))
	for _, out := range outs {
		findings = append(findings, Output(source, out))
	}
	return findings
}
