package service

import (
	"sync"
	"time"

	"scamwall/internal/model"
)

// AnalysisStatus 单个渠道的分析任务状态
type AnalysisStatus struct {
	Channel    model.ChannelType `json:"channel"`
	Running    int               `json:"running"`    // 进行中的分析数
	Completed  int               `json:"completed"`  // 累计完成数
	Failed     int               `json:"failed"`     // 累计失败数（非法输入等请求级错误）
	Suppressed int               `json:"suppressed"` // 视频渠道被抑制的帧数
	LastError  string            `json:"last_error"` // 最近一次错误，空串表示没有
	LastFinish *time.Time        `json:"last_finish"`
}

// TaskManager 分析任务计数器，供状态接口查询
type TaskManager interface {
	// StartAnalysis 记录一次分析开始
	StartAnalysis(channel model.ChannelType)

	// FinishAnalysis 记录一次分析结束，err为空串表示成功
	FinishAnalysis(channel model.ChannelType, err string)

	// MarkSuppressed 记录一次被抑制的视频帧
	MarkSuppressed(channel model.ChannelType)

	// IsAnyRunning 是否有分析进行中
	IsAnyRunning() bool

	// GetAllStatus 获取所有渠道状态
	GetAllStatus() map[model.ChannelType]*AnalysisStatus
}

// taskManagerImpl 任务计数器实现
type taskManagerImpl struct {
	mutex    sync.RWMutex
	statuses map[model.ChannelType]*AnalysisStatus
}

// NewTaskManager 创建任务计数器
func NewTaskManager() TaskManager {
	return &taskManagerImpl{
		statuses: make(map[model.ChannelType]*AnalysisStatus),
	}
}

func (tm *taskManagerImpl) status(channel model.ChannelType) *AnalysisStatus {
	status, exists := tm.statuses[channel]
	if !exists {
		status = &AnalysisStatus{Channel: channel}
		tm.statuses[channel] = status
	}
	return status
}

// StartAnalysis 记录一次分析开始
func (tm *taskManagerImpl) StartAnalysis(channel model.ChannelType) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.status(channel).Running++
}

// FinishAnalysis 记录一次分析结束
func (tm *taskManagerImpl) FinishAnalysis(channel model.ChannelType, err string) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	status := tm.status(channel)
	if status.Running > 0 {
		status.Running--
	}
	if err == "" {
		status.Completed++
	} else {
		status.Failed++
	}
	status.LastError = err
	now := time.Now()
	status.LastFinish = &now
}

// MarkSuppressed 记录一次被抑制的视频帧
func (tm *taskManagerImpl) MarkSuppressed(channel model.ChannelType) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.status(channel).Suppressed++
}

// IsAnyRunning 是否有分析进行中
func (tm *taskManagerImpl) IsAnyRunning() bool {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	for _, status := range tm.statuses {
		if status.Running > 0 {
			return true
		}
	}
	return false
}

// GetAllStatus 获取所有渠道状态快照
func (tm *taskManagerImpl) GetAllStatus() map[model.ChannelType]*AnalysisStatus {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	result := make(map[model.ChannelType]*AnalysisStatus, len(tm.statuses))
	for channel, status := range tm.statuses {
		copied := *status
		result[channel] = &copied
	}
	return result
}
