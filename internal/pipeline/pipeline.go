package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"scamwall/internal/detector"
	"scamwall/internal/detector/audiospoof"
	"scamwall/internal/detector/liveness"
	"scamwall/internal/model"
	"scamwall/internal/normalize"
	"scamwall/internal/recommend"
	"scamwall/internal/risk"
)

// TaskManager 编排器消费的任务计数接口，由service包的TaskManager实现
type TaskManager interface {
	StartAnalysis(channel model.ChannelType)
	FinishAnalysis(channel model.ChannelType, err string)
	MarkSuppressed(channel model.ChannelType)
}

// 请求级错误：非法输入不做部分分析，直接报给调用方
var (
	ErrEmptyText      = errors.New("text content is empty")
	ErrEmptyAudio     = errors.New("audio payload is empty")
	ErrEmptyFrame     = errors.New("frame payload is empty")
	ErrUnknownChannel = errors.New("unknown channel type")
)

// MalformedFrameError 视频帧不可解码
type MalformedFrameError struct {
	Cause error
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("malformed video frame: %v", e.Cause)
}

func (e *MalformedFrameError) Unwrap() error {
	return e.Cause
}

const defaultDetectorTimeout = 10 * time.Second

// 附加协作方的来源名，注册表之外的两个边界
const (
	sourceTranscriber = "audio_transcriber"
	sourceLiveness    = "video_liveness"
)

// Pipeline 检测编排器。
// 按渠道串联协作方调用，单个协作方失败转成诊断性finding，
// 分析一定产出完整的RiskAssessment
type Pipeline struct {
	registry    detector.Registry
	transcriber audiospoof.Transcriber
	liveness    liveness.Analyzer
	timeout     time.Duration
	tasks       TaskManager
}

// New 创建检测编排器，timeout为0时取默认单协作方超时
func New(registry detector.Registry, transcriber audiospoof.Transcriber, analyzer liveness.Analyzer, timeout time.Duration, tasks TaskManager) *Pipeline {
	if timeout <= 0 {
		timeout = defaultDetectorTimeout
	}
	return &Pipeline{
		registry:    registry,
		transcriber: transcriber,
		liveness:    analyzer,
		timeout:     timeout,
		tasks:       tasks,
	}
}

// Analyze 按渠道分发分析请求。
// 视频渠道没有可分析对象时返回(nil, nil)，调用方据此抑制广播
func (p *Pipeline) Analyze(ctx context.Context, channel model.ChannelType, input detector.Input) (*model.RiskAssessment, error) {
	switch channel {
	case model.ChannelSMS, model.ChannelEmail:
		return p.AnalyzeText(ctx, channel, input.Text, input.Sender)
	case model.ChannelAudio:
		return p.AnalyzeAudio(ctx, input.Audio, input.Filename)
	case model.ChannelVideo:
		return p.AnalyzeVideoFrame(ctx, input.Frame)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, channel)
	}
}

// AnalyzeText 分析sms/email文本。
// 顺序：发件人信誉 → 情绪关键词 → 文本分类
func (p *Pipeline) AnalyzeText(ctx context.Context, channel model.ChannelType, text, sender string) (*model.RiskAssessment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	p.start(channel)

	var findings []model.Finding

	if strings.TrimSpace(sender) != "" {
		reputationDetector := detector.DetectorPhoneRep
		if channel == model.ChannelEmail {
			reputationDetector = detector.DetectorEmailRep
		}
		findings = append(findings, p.detect(ctx, reputationDetector, detector.Input{Sender: sender})...)
	}

	findings = append(findings, p.detect(ctx, detector.DetectorSentiment, detector.Input{Text: text})...)
	findings = append(findings, p.detect(ctx, detector.DetectorTextClass, detector.Input{Text: text})...)

	assessment := p.assemble(channel, findings, model.Payload{Content: text})
	p.finish(channel, "")
	return assessment, nil
}

// AnalyzeAudio 分析音频。
// 转写→转写文本分类 与 原始音频伪造检测 两条支路相互独立，
// 转写失败不影响伪造检测的结果
func (p *Pipeline) AnalyzeAudio(ctx context.Context, audio []byte, filename string) (*model.RiskAssessment, error) {
	if len(audio) == 0 {
		return nil, ErrEmptyAudio
	}

	p.start(model.ChannelAudio)

	var (
		textFindings  []model.Finding
		spoofFindings []model.Finding
		transcript    string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if p.transcriber == nil {
			textFindings = []model.Finding{
				normalize.Failure(sourceTranscriber, "transcriber not configured"),
				normalize.Failure(detector.DetectorTextClass, "transcript unavailable"),
			}
			return nil
		}

		tctx, cancel := context.WithTimeout(gctx, p.timeout)
		defer cancel()

		text, err := p.transcriber.Transcribe(tctx, audio, filename)
		if err != nil {
			logrus.WithError(err).Warn("audio transcription failed")
			textFindings = []model.Finding{
				normalize.Failure(sourceTranscriber, err.Error()),
				normalize.Failure(detector.DetectorTextClass, "transcript unavailable"),
			}
			return nil
		}

		transcript = text
		textFindings = p.detect(gctx, detector.DetectorTextClass, detector.Input{Text: text})
		return nil
	})

	g.Go(func() error {
		spoofFindings = p.detect(gctx, detector.DetectorAudioSpoof, detector.Input{Audio: audio, Filename: filename})
		return nil
	})

	// 支路自身不返回error，Wait只为同步
	_ = g.Wait()

	// 固定拼接顺序，保证同样输入产出同样的findings序列
	findings := append(textFindings, spoofFindings...)

	assessment := p.assemble(model.ChannelAudio, findings, model.Payload{Filename: filename, Transcript: transcript})
	p.finish(model.ChannelAudio, "")
	return assessment, nil
}

// AnalyzeVideoFrame 分析单帧图像，帧间无状态。
// 没检测到人脸返回(nil, nil)，帧不可解码按非法输入报错
func (p *Pipeline) AnalyzeVideoFrame(ctx context.Context, frame []byte) (*model.RiskAssessment, error) {
	if len(frame) == 0 {
		return nil, ErrEmptyFrame
	}
	if p.liveness == nil {
		return nil, errors.New("liveness analyzer not configured")
	}

	fctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	analysis, err := p.liveness.AnalyzeFrame(fctx, frame)
	if err != nil {
		return nil, &MalformedFrameError{Cause: err}
	}

	if !analysis.FaceDetected {
		if p.tasks != nil {
			p.tasks.MarkSuppressed(model.ChannelVideo)
		}
		return nil, nil
	}

	p.start(model.ChannelVideo)

	conf := analysis.Confidence
	var out detector.Output
	if analysis.IsReal {
		out = detector.Output{Label: "liveness check passed", Confidence: &conf}
	} else {
		out = detector.Output{Label: "deepfake suspected, liveness check failed", Confidence: &conf}
	}
	findings := []model.Finding{normalize.Output(sourceLiveness, out)}

	assessment := p.assemble(model.ChannelVideo, findings, model.Payload{})
	p.finish(model.ChannelVideo, "")
	return assessment, nil
}

// detect 调用单个检测器并归一化结果，永不失败
func (p *Pipeline) detect(ctx context.Context, name string, input detector.Input) []model.Finding {
	d, err := p.registry.Get(name)
	if err != nil {
		return []model.Finding{normalize.Failure(name, err.Error())}
	}

	dctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	outputs, err := d.Detect(dctx, input)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"detector": name,
		}).WithError(err).Warn("detector call failed")
	}
	return normalize.Outputs(name, outputs, err)
}

// assemble 由findings组装最终结论
func (p *Pipeline) assemble(channel model.ChannelType, findings []model.Finding, payload model.Payload) *model.RiskAssessment {
	score, level := risk.Score(findings)
	return &model.RiskAssessment{
		Channel:         channel,
		Findings:        findings,
		RiskScore:       score,
		RiskLevel:       level,
		Recommendations: recommend.Recommend(findings),
		Payload:         payload,
	}
}

func (p *Pipeline) start(channel model.ChannelType) {
	if p.tasks != nil {
		p.tasks.StartAnalysis(channel)
	}
}

func (p *Pipeline) finish(channel model.ChannelType, errMsg string) {
	if p.tasks != nil {
		p.tasks.FinishAnalysis(channel, errMsg)
	}
}
