package recommend

import (
	"regexp"
	"sort"
	"strings"

	"scamwall/internal/model"
)

// 触发词到建议的固定映射
var recommendationMap = map[string][]string{
	"scam": {
		"Do not respond to suspicious messages.",
		"Report the scam to relevant authorities.",
	},
	"phishing": {
		"Do not click on suspicious links.",
		"Verify the sender's identity before sharing personal information.",
	},
	"disposable email": {
		"Be cautious when dealing with users using disposable email addresses.",
		"Request a permanent email address for further communication.",
	},
	"high-risk keywords": {
		"Review the message for high-risk keywords and proceed with caution.",
		"Avoid sharing sensitive information.",
	},
	"deepfake": {
		"Verify the authenticity of audio or video messages.",
		"Do not trust media content without proper validation.",
	},
}

// triggerPattern 触发词编译成单个正则，每条finding只扫一遍
var triggerPattern = buildTriggerPattern()

func buildTriggerPattern() *regexp.Regexp {
	triggers := make([]string, 0, len(recommendationMap))
	for trigger := range recommendationMap {
		triggers = append(triggers, regexp.QuoteMeta(trigger))
	}
	// 长触发词优先，避免"high-risk keywords"被短词截断
	sort.Slice(triggers, func(i, j int) bool {
		return len(triggers[i]) > len(triggers[j])
	})
	return regexp.MustCompile(`(` + strings.Join(triggers, "|") + `)`)
}

// 两个互斥的兜底建议：无findings与有findings但无触发词命中
const (
	fallbackNoFindings = "Always be cautious with unsolicited communications."
	fallbackNoMatch    = "Review the detected signals carefully and proceed with caution."
)

// Recommend 根据findings产出去重且按字典序排序的建议列表。
// 结果与findings顺序无关
func Recommend(findings []model.Finding) []string {
	if len(findings) == 0 {
		return []string{fallbackNoFindings}
	}

	recos := make(map[string]struct{})
	for _, f := range findings {
		text := strings.ToLower(f.Text())
		for _, trigger := range triggerPattern.FindAllString(text, -1) {
			for _, reco := range recommendationMap[trigger] {
				recos[reco] = struct{}{}
			}
		}
	}

	if len(recos) == 0 {
		return []string{fallbackNoMatch}
	}

	result := make([]string, 0, len(recos))
	for reco := range recos {
		result = append(result, reco)
	}
	sort.Strings(result)
	return result
}
