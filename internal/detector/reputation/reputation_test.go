package reputation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scamwall/internal/detector"
	"scamwall/internal/model"
)

// fakeCache 测试用信誉缓存
type fakeCache struct {
	records map[string]*model.ReputationRecord
	saved   []*model.ReputationRecord
}

func newFakeCache() *fakeCache {
	return &fakeCache{records: make(map[string]*model.ReputationRecord)}
}

func (c *fakeCache) FindByAddress(address string, kind model.ReputationKind) (*model.ReputationRecord, error) {
	return c.records[string(kind)+"|"+address], nil
}

func (c *fakeCache) CreateOrUpdate(record *model.ReputationRecord) error {
	c.records[string(record.Kind)+"|"+record.Address] = record
	c.saved = append(c.saved, record)
	return nil
}

func detectEmail(t *testing.T, analyzer *EmailAnalyzer, sender string) []detector.Output {
	outputs, err := analyzer.Detect(context.Background(), detector.Input{Sender: sender})
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	return outputs
}

func TestEmailDetectEmptySender(t *testing.T) {
	_, err := NewEmailAnalyzer(nil, nil).Detect(context.Background(), detector.Input{Sender: "  "})
	assert.Error(t, err)
}

func TestEmailDetectInvalidSyntax(t *testing.T) {
	outputs := detectEmail(t, NewEmailAnalyzer(nil, nil), "not-an-email")
	assert.Equal(t, "invalid email address syntax", outputs[0].Label)
	assert.Nil(t, outputs[0].Confidence)
}

func TestEmailDetectDisposableDomain(t *testing.T) {
	outputs := detectEmail(t, NewEmailAnalyzer(nil, nil), "user@mailinator.com")
	assert.Equal(t, "disposable email domain: mailinator.com", outputs[0].Label)
	require.NotNil(t, outputs[0].Confidence)
	assert.InDelta(t, 0.95, *outputs[0].Confidence, 1e-9)
}

func TestEmailDetectExtraDisposableDomain(t *testing.T) {
	analyzer := NewEmailAnalyzer([]string{"Throwaway.Example "}, nil)
	outputs := detectEmail(t, analyzer, "user@throwaway.example")
	assert.Equal(t, "disposable email domain: throwaway.example", outputs[0].Label)
}

func TestEmailDetectCleanDomain(t *testing.T) {
	outputs := detectEmail(t, NewEmailAnalyzer(nil, nil), "User@Example.COM")
	assert.Equal(t, "email domain example.com has no negative reputation", outputs[0].Label)
}

func TestEmailDetectWritesAndReadsCache(t *testing.T) {
	cache := newFakeCache()
	analyzer := NewEmailAnalyzer(nil, cache)

	detectEmail(t, analyzer, "user@mailinator.com")
	require.Len(t, cache.saved, 1)
	assert.True(t, cache.saved[0].Disposable)
	assert.Equal(t, model.ReputationKindEmail, cache.saved[0].Kind)

	// 第二次查询命中缓存，不再写入
	outputs := detectEmail(t, analyzer, "user@mailinator.com")
	assert.Equal(t, "disposable email domain: mailinator.com", outputs[0].Label)
	assert.Len(t, cache.saved, 1)
}

func detectPhone(t *testing.T, analyzer *PhoneAnalyzer, sender string) []detector.Output {
	outputs, err := analyzer.Detect(context.Background(), detector.Input{Sender: sender})
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	return outputs
}

func TestPhoneDetectEmptySender(t *testing.T) {
	_, err := NewPhoneAnalyzer(nil).Detect(context.Background(), detector.Input{Sender: ""})
	assert.Error(t, err)
}

func TestPhoneDetectInvalidFormat(t *testing.T) {
	outputs := detectPhone(t, NewPhoneAnalyzer(nil), "12345")
	assert.Equal(t, "invalid phone number format", outputs[0].Label)
}

func TestPhoneDetectPremiumRate(t *testing.T) {
	outputs := detectPhone(t, NewPhoneAnalyzer(nil), "1900-555-0199")
	assert.Equal(t, "premium-rate callback number", outputs[0].Label)
	require.NotNil(t, outputs[0].Confidence)
	assert.InDelta(t, 0.8, *outputs[0].Confidence, 1e-9)
}

func TestPhoneDetectStandardNumber(t *testing.T) {
	outputs := detectPhone(t, NewPhoneAnalyzer(nil), "+1 (555) 123-4567")
	assert.Equal(t, "phone number has no negative reputation", outputs[0].Label)
}

func TestPhoneDetectCacheHit(t *testing.T) {
	cache := newFakeCache()
	analyzer := NewPhoneAnalyzer(cache)

	detectPhone(t, analyzer, "1900 555 0199")
	require.Len(t, cache.saved, 1)
	assert.Equal(t, "premium_rate", cache.saved[0].Detail)
	assert.Equal(t, "19005550199", cache.saved[0].Address)

	// 同一号码的不同书写形式归一化后命中同一条缓存
	outputs := detectPhone(t, analyzer, "1-900-555-0199")
	assert.Equal(t, "premium-rate callback number", outputs[0].Label)
	assert.Len(t, cache.saved, 1)
}
