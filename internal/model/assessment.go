package model

// RiskLevel 风险等级
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"      // 无风险信号
	RiskLevelMedium   RiskLevel = "MEDIUM"   // 中等风险
	RiskLevelHigh     RiskLevel = "HIGH"     // 高风险
	RiskLevelCritical RiskLevel = "CRITICAL" // 极高风险
)

// RiskAssessment 一次分析的完整结论，构造后不可修改
type RiskAssessment struct {
	Channel         ChannelType `json:"channel_type"`
	Findings        []Finding   `json:"findings"`
	RiskScore       int         `json:"risk_score"` // [0,100]
	RiskLevel       RiskLevel   `json:"risk_level"`
	Recommendations []string    `json:"recommendations"` // 已去重并按字典序排序
	Payload         Payload     `json:"payload"`
}

// Payload 渠道相关的原始内容回显
type Payload struct {
	Content    string `json:"content,omitempty"`    // sms/email正文
	Filename   string `json:"filename,omitempty"`   // 音频文件名
	Transcript string `json:"transcript,omitempty"` // 音频转写文本
}

// EnvelopeType 对外广播的消息类型
type EnvelopeType string

const (
	EnvelopeTextAnalysis  EnvelopeType = "text_analysis"
	EnvelopeAudioAnalysis EnvelopeType = "audio_analysis"
	EnvelopeVideoFrame    EnvelopeType = "video_frame_analysis"
)

// Envelope 广播给观察者的消息结构
type Envelope struct {
	Type       EnvelopeType     `json:"type"`
	Content    string           `json:"content,omitempty"`
	Filename   string           `json:"filename,omitempty"`
	Transcript string           `json:"transcript,omitempty"`
	Result     AssessmentResult `json:"result"`
}

// AssessmentResult 广播消息里的分析结果部分
type AssessmentResult struct {
	RiskScore       int       `json:"risk_score"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Findings        []Finding `json:"findings"`
	Recommendations []string  `json:"recommendations"`
}

// envelopeTypes 渠道到消息类型的映射
var envelopeTypes = map[ChannelType]EnvelopeType{
	ChannelSMS:   EnvelopeTextAnalysis,
	ChannelEmail: EnvelopeTextAnalysis,
	ChannelAudio: EnvelopeAudioAnalysis,
	ChannelVideo: EnvelopeVideoFrame,
}

// ToEnvelope 把分析结论转成对外广播消息
func (a *RiskAssessment) ToEnvelope() Envelope {
	findings := a.Findings
	if findings == nil {
		findings = []Finding{}
	}
	recos := a.Recommendations
	if recos == nil {
		recos = []string{}
	}
	return Envelope{
		Type:       envelopeTypes[a.Channel],
		Content:    a.Payload.Content,
		Filename:   a.Payload.Filename,
		Transcript: a.Payload.Transcript,
		Result: AssessmentResult{
			RiskScore:       a.RiskScore,
			RiskLevel:       a.RiskLevel,
			Findings:        findings,
			Recommendations: recos,
		},
	}
}
