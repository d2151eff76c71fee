package textclass

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"scamwall/internal/detector"
)

// 常见诈骗触发短语，命中越多置信度越高
var triggerPhrases = []string{
	"digital arrest",
	"verify your identity",
	"account suspended",
	"legal action",
	"immediate payment",
	"urgent",
	"click this link",
	"winner",
	"prize",
	"claim",
}

// 凭据钓鱼相关词，与可疑链接同时出现时判定为钓鱼
var credentialWords = []string{
	"verify", "confirm", "login", "sign-in", "sign in", "password", "details", "credentials",
}

// 可疑链接：短链域名、IP直连或非常见顶级域
var suspiciousLinkPattern = regexp.MustCompile(`https?://(?:bit\.ly|tinyurl\.com|t\.co|goo\.gl|\d{1,3}(?:\.\d{1,3}){3})\S*|https?://\S+\.(?:net|info|xyz|top|cc)/\S*`)

// Classifier 诈骗文本分类器。
// 基于触发短语和链接特征的启发式实现，接口上与外部模型调用等价
type Classifier struct {
	pattern *regexp.Regexp
}

// New 创建文本分类器，触发短语编译为单个正则
func New() *Classifier {
	escaped := make([]string, 0, len(triggerPhrases))
	for _, p := range triggerPhrases {
		escaped = append(escaped, regexp.QuoteMeta(p))
	}
	return &Classifier{
		pattern: regexp.MustCompile(`(` + strings.Join(escaped, "|") + `)`),
	}
}

// Name 检测器名称
func (c *Classifier) Name() string {
	return detector.DetectorTextClass
}

// Detect 分析文本是否为诈骗内容
func (c *Classifier) Detect(ctx context.Context, input detector.Input) ([]detector.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("no text to classify")
	}

	text := strings.ToLower(input.Text)
	triggers := uniqueMatches(c.pattern.FindAllString(text, -1))
	link := suspiciousLinkPattern.FindString(text)

	var outputs []detector.Output

	// 链接与凭据词同时出现，判定钓鱼
	if link != "" && containsAny(text, credentialWords) {
		conf := 0.9
		outputs = append(outputs, detector.Output{
			Label:      fmt.Sprintf("phishing pattern detected: suspicious link %s", link),
			Confidence: &conf,
		})
	}

	if len(triggers) > 0 {
		conf := 0.55 + 0.1*float64(len(triggers))
		if conf > 0.95 {
			conf = 0.95
		}
		outputs = append(outputs, detector.Output{
			Label:      fmt.Sprintf("scam content detected, trigger phrases: %s", strings.Join(triggers, ", ")),
			Confidence: &conf,
			Extra:      map[string]string{"trigger_phrases": strings.Join(triggers, ",")},
		})
	}

	if len(outputs) == 0 {
		outputs = append(outputs, detector.Output{Label: "no suspicious content indicators"})
	}

	return outputs, nil
}

func uniqueMatches(matches []string) []string {
	seen := make(map[string]struct{}, len(matches))
	result := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		result = append(result, m)
	}
	return result
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
