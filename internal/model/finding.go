package model

import (
	"strings"
)

// ChannelType 输入渠道类型
type ChannelType string

const (
	ChannelSMS   ChannelType = "sms"   // 短信
	ChannelEmail ChannelType = "email" // 邮件
	ChannelAudio ChannelType = "audio" // 音频
	ChannelVideo ChannelType = "video" // 视频帧
)

// StringToChannelType string转ChannelType
func StringToChannelType(str string) ChannelType {
	return ChannelType(strings.ToLower(str))
}

// Finding 单条检测发现，由归一化层产出后不可再修改
type Finding struct {
	Source     string   `json:"source"`               // 产生该发现的检测器
	Label      string   `json:"label"`                // 检测内容描述，已小写
	Confidence *float64 `json:"confidence,omitempty"` // 置信度[0,1]，nil表示检测器未给出
}

// Key 去重标识，按 (source, label) 小写组合
func (f Finding) Key() string {
	return strings.ToLower(f.Source) + "|" + strings.ToLower(f.Label)
}

// Text 用于关键词匹配的拼接文本，归一化时已小写
func (f Finding) Text() string {
	return f.Source + " " + f.Label
}

// HasConfidence 检测器是否给出了置信度
func (f Finding) HasConfidence() bool {
	return f.Confidence != nil
}

// ConfidenceOf 构造置信度指针
func ConfidenceOf(v float64) *float64 {
	return &v
}
