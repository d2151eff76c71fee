package detector

import (
	"context"
)

// 检测器名称，流水线按名称取检测器
const (
	DetectorTextClass  = "text_classifier"
	DetectorSentiment  = "sentiment_analyzer"
	DetectorEmailRep   = "email_reputation"
	DetectorPhoneRep   = "phone_reputation"
	DetectorAudioSpoof = "audio_spoof"
	DetectorLiveness   = "video_liveness"
)

// Input 检测器输入，按渠道填充对应字段
type Input struct {
	Text     string // 正文、主题或转写文本
	Sender   string // 发件人邮箱地址或电话号码
	Audio    []byte // 原始音频数据
	Filename string // 音频文件名
	Frame    []byte // 视频帧图像数据
}

// Output 检测器原始输出，经归一化层转成Finding
type Output struct {
	Label      string            // 检测结论描述
	Confidence *float64          // 置信度[0,1]，nil表示无
	Extra      map[string]string // 附加说明，如触发短语
}

// Detector 单个检测协作方。调用可能很慢也可能失败，
// 失败由归一化层转成诊断性Finding，不会中断整条流水线。
// 正常返回至少一个Output，没有风险信号时返回良性Output
type Detector interface {
	Name() string
	Detect(ctx context.Context, input Input) ([]Output, error)
}
