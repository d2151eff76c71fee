package main

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"scamwall/api"
	"scamwall/config"
	"scamwall/internal/repository"
	"scamwall/internal/scheduler"
	"scamwall/internal/service"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Warnf("failed to load config, using defaults: %v", err)
		cfg = config.Default()
	}

	// 2. 初始化数据库
	db, err := repository.InitDB(cfg.Database)
	if err != nil {
		logrus.Fatalf("failed to initialize database: %v", err)
	}

	// 3. 初始化服务
	services, err := service.NewServices(cfg, db)
	if err != nil {
		logrus.Fatalf("failed to initialize services: %v", err)
	}

	// 4. 初始化调度器
	newScheduler := scheduler.NewScheduler(services.Reputation, cfg.Detector.ReputationCacheDays)
	if err := newScheduler.Init(cfg.CronJobs); err != nil {
		logrus.Fatalf("failed to start scheduler: %v", err)
	}

	// 5. 启动HTTP服务器
	router := api.SetupRouter(cfg, services, newScheduler)

	logrus.Infof("starting server on %s", cfg.Server.Address)
	if err := http.ListenAndServe(cfg.Server.Address, router); err != nil {
		logrus.Fatalf("failed to start server: %v", err)
	}
}
