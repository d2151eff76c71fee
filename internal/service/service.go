package service

import (
	"time"

	"gorm.io/gorm"

	"scamwall/config"
	"scamwall/internal/detector"
	"scamwall/internal/detector/audiospoof"
	"scamwall/internal/detector/liveness"
	"scamwall/internal/detector/reputation"
	"scamwall/internal/detector/sentiment"
	"scamwall/internal/detector/textclass"
	"scamwall/internal/hub"
	"scamwall/internal/pipeline"
	"scamwall/internal/repository"
)

// Services 所有服务的集合
type Services struct {
	Pipeline      *pipeline.Pipeline
	Hub           *hub.Hub
	TaskManager   TaskManager
	AlertNotifier *AlertNotifier
	Reputation    repository.ReputationRepository
}

// NewServices 初始化所有服务
func NewServices(cfg *config.Config, db *gorm.DB) (*Services, error) {
	timeout := time.Duration(cfg.Detector.TimeoutSeconds) * time.Second

	// 信誉缓存仓库，可按配置关闭
	var reputationRepo repository.ReputationRepository
	var cache reputation.Cache
	if db != nil && !cfg.Detector.DisableCache {
		reputationRepo = repository.NewReputationRepository(db)
		cache = reputationRepo
	}

	// 注册检测器
	registry := detector.NewRegistry()
	for _, d := range []detector.Detector{
		textclass.New(),
		sentiment.New(),
		reputation.NewEmailAnalyzer(cfg.Detector.ExtraDisposable, cache),
		reputation.NewPhoneAnalyzer(cache),
		audiospoof.NewSpoofDetector(cfg.Detector.SpoofModelEndpoint, timeout),
	} {
		if err := registry.Register(d); err != nil {
			return nil, err
		}
	}

	taskManager := NewTaskManager()

	detectionPipeline := pipeline.New(
		registry,
		audiospoof.NewHTTPTranscriber(cfg.Detector.TranscriberEndpoint, timeout),
		liveness.NewHeuristicAnalyzer(),
		timeout,
		taskManager,
	)

	return &Services{
		Pipeline:      detectionPipeline,
		Hub:           hub.NewHub(),
		TaskManager:   taskManager,
		AlertNotifier: NewAlertNotifier(cfg.Alert),
		Reputation:    reputationRepo,
	}, nil
}
