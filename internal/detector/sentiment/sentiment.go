package sentiment

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"scamwall/internal/detector"
)

// 诈骗常用施压词表，可按需扩充
var scamKeywords = []string{
	"urgent", "immediate", "action required", "verify", "account suspended",
	"security alert", "winner", "prize", "claim", "free", "reward", "refund",
	"confidential", "ssn", "password", "bank account", "credit card", "irs",
	"tax refund", "w-2", "overdue",
}

// 负面情绪词，用于粗粒度极性估计
var negativeWords = []string{
	"suspended", "arrest", "fraud", "unauthorized", "locked", "failure", "penalty", "threat",
}

// Analyzer 情绪与关键词分析器
type Analyzer struct {
	keywordPattern *regexp.Regexp
}

// New 创建分析器，关键词编译为单个\b包围的正则
func New() *Analyzer {
	escaped := make([]string, 0, len(scamKeywords))
	for _, k := range scamKeywords {
		escaped = append(escaped, regexp.QuoteMeta(k))
	}
	return &Analyzer{
		keywordPattern: regexp.MustCompile(`\b(` + strings.Join(escaped, "|") + `)\b`),
	}
}

// Name 检测器名称
func (a *Analyzer) Name() string {
	return detector.DetectorSentiment
}

// Detect 对文本做关键词定位和极性估计
func (a *Analyzer) Detect(ctx context.Context, input detector.Input) ([]detector.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("no text to analyze")
	}

	text := strings.ToLower(input.Text)
	flagged := uniqueSorted(a.keywordPattern.FindAllString(text, -1))

	if len(flagged) == 0 {
		return []detector.Output{{Label: "no flagged keywords"}}, nil
	}

	conf := 0.5 + 0.1*float64(len(flagged))
	if conf > 0.95 {
		conf = 0.95
	}

	out := detector.Output{
		Label:      fmt.Sprintf("high-risk keywords detected: %s", strings.Join(flagged, ", ")),
		Confidence: &conf,
		Extra:      map[string]string{"polarity": fmt.Sprintf("%.2f", polarity(text))},
	}
	return []detector.Output{out}, nil
}

// polarity 粗粒度极性，负面施压词越多越接近-1
func polarity(text string) float64 {
	hits := 0
	for _, w := range negativeWords {
		if strings.Contains(text, w) {
			hits++
		}
	}
	p := -0.2 * float64(hits)
	if p < -1 {
		p = -1
	}
	return p
}

func uniqueSorted(matches []string) []string {
	seen := make(map[string]struct{}, len(matches))
	result := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		result = append(result, m)
	}
	sort.Strings(result)
	return result
}
