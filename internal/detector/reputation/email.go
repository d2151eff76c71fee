package reputation

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"scamwall/internal/detector"
	"scamwall/internal/model"
)

// 已知一次性邮箱域名，可通过配置扩充
var disposableDomains = map[string]struct{}{
	"mailinator.com":   {},
	"temp-mail.org":    {},
	"10minutemail.com": {},
	"yopmail.com":      {},
}

// Cache 信誉查询结果缓存，实现见repository包。
// nil表示不启用缓存，每次实时判定
type Cache interface {
	FindByAddress(address string, kind model.ReputationKind) (*model.ReputationRecord, error)
	CreateOrUpdate(record *model.ReputationRecord) error
}

// EmailAnalyzer 邮箱信誉分析器
type EmailAnalyzer struct {
	extraDisposable map[string]struct{}
	cache           Cache
}

// NewEmailAnalyzer 创建邮箱信誉分析器
func NewEmailAnalyzer(extraDomains []string, cache Cache) *EmailAnalyzer {
	extra := make(map[string]struct{}, len(extraDomains))
	for _, d := range extraDomains {
		extra[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}
	return &EmailAnalyzer{extraDisposable: extra, cache: cache}
}

// Name 检测器名称
func (e *EmailAnalyzer) Name() string {
	return detector.DetectorEmailRep
}

// Detect 校验邮箱语法并检查一次性域名
func (e *EmailAnalyzer) Detect(ctx context.Context, input detector.Input) ([]detector.Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	address := strings.ToLower(strings.TrimSpace(input.Sender))
	if address == "" {
		return nil, fmt.Errorf("email address is empty")
	}

	// 优先查缓存
	if e.cache != nil {
		if record, err := e.cache.FindByAddress(address, model.ReputationKindEmail); err == nil && record != nil {
			return e.outputs(record.Valid, record.Disposable, record.Detail), nil
		}
	}

	parsed, err := mail.ParseAddress(address)
	valid := err == nil
	domain := ""
	disposable := false
	if valid {
		if at := strings.LastIndex(parsed.Address, "@"); at >= 0 {
			domain = parsed.Address[at+1:]
		}
		disposable = e.isDisposable(domain)
	}

	if e.cache != nil {
		_ = e.cache.CreateOrUpdate(&model.ReputationRecord{
			Address:    address,
			Kind:       model.ReputationKindEmail,
			Valid:      valid,
			Disposable: disposable,
			Detail:     domain,
			CheckedAt:  time.Now(),
		})
	}

	return e.outputs(valid, disposable, domain), nil
}

func (e *EmailAnalyzer) isDisposable(domain string) bool {
	if _, ok := disposableDomains[domain]; ok {
		return true
	}
	_, ok := e.extraDisposable[domain]
	return ok
}

func (e *EmailAnalyzer) outputs(valid, disposable bool, domain string) []detector.Output {
	if !valid {
		return []detector.Output{{Label: "invalid email address syntax"}}
	}
	if disposable {
		conf := 0.95
		return []detector.Output{{
			Label:      fmt.Sprintf("disposable email domain: %s", domain),
			Confidence: &conf,
		}}
	}
	return []detector.Output{{Label: fmt.Sprintf("email domain %s has no negative reputation", domain)}}
}
