package service

import (
	"strings"

	"github.com/sirupsen/logrus"

	"scamwall/config"
	"scamwall/internal/model"
	"scamwall/internal/util"
)

// levelRank 风险等级排序，用于阈值比较
var levelRank = map[model.RiskLevel]int{
	model.RiskLevelLow:      0,
	model.RiskLevelMedium:   1,
	model.RiskLevelHigh:     2,
	model.RiskLevelCritical: 3,
}

// AlertNotifier 高风险结论的webhook通知器
type AlertNotifier struct {
	webhooks []config.WebhookConfig
	minLevel model.RiskLevel
	client   *util.WebhookClient
}

// NewAlertNotifier 创建告警通知器
func NewAlertNotifier(cfg config.Alert) *AlertNotifier {
	return &AlertNotifier{
		webhooks: cfg.Webhooks,
		minLevel: cfg.MinLevel,
		client:   util.NewWebhookClient(),
	}
}

// Notify 风险等级达到阈值时异步触发webhook。
// 通知失败只记日志，不影响分析请求
func (n *AlertNotifier) Notify(assessment *model.RiskAssessment) {
	if assessment == nil || len(n.webhooks) == 0 {
		return
	}
	if levelRank[assessment.RiskLevel] < levelRank[n.minLevel] {
		return
	}

	data := map[string]interface{}{
		"channel":         string(assessment.Channel),
		"risk_score":      assessment.RiskScore,
		"risk_level":      string(assessment.RiskLevel),
		"recommendations": strings.Join(assessment.Recommendations, "; "),
	}

	go func() {
		for _, err := range n.client.ExecuteWebhooks(n.webhooks, data) {
			logrus.WithError(err).Warn("alert webhook failed")
		}
	}()
}
