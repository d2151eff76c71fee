package scheduler

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"scamwall/config"
	"scamwall/internal/repository"
)

// Scheduler 定时任务调度器
type Scheduler struct {
	cron       *cron.Cron
	jobMutex   sync.Mutex
	isRunning  bool
	reputation repository.ReputationRepository
	cacheDays  int
	jobIDs     map[string]cron.EntryID
}

// NewScheduler 创建调度器
func NewScheduler(reputation repository.ReputationRepository, cacheDays int) *Scheduler {
	if cacheDays <= 0 {
		cacheDays = 7
	}
	return &Scheduler{
		cron:       cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		reputation: reputation,
		cacheDays:  cacheDays,
		jobIDs:     make(map[string]cron.EntryID),
	}
}

// Init 按配置注册任务并启动调度器
func (s *Scheduler) Init(cronJobs []config.CronJob) error {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	if s.isRunning {
		s.cron.Stop()
	}

	s.cron = cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	s.jobIDs = make(map[string]cron.EntryID)

	for _, job := range cronJobs {
		if job.Schedule == "" {
			logrus.Warnf("job %s has invalid schedule, skipping", job.Name)
			continue
		}

		jobConfig := job // 创建副本避免闭包问题
		entryID, err := s.cron.AddFunc(jobConfig.Schedule, func() {
			s.executeJob(jobConfig)
		})
		if err != nil {
			logrus.WithError(err).Warnf("failed to add job %s", job.Name)
			continue
		}

		s.jobIDs[job.Name] = entryID
		logrus.Infof("added job %s with schedule %s", job.Name, job.Schedule)
	}

	s.cron.Start()
	s.isRunning = true
	return nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		logrus.Info("scheduler stopped")
	}
}

// GetStatus 调度器状态
func (s *Scheduler) GetStatus() map[string]interface{} {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	jobs := make([]string, 0, len(s.jobIDs))
	for name := range s.jobIDs {
		jobs = append(jobs, name)
	}
	return map[string]interface{}{
		"running": s.isRunning,
		"jobs":    jobs,
	}
}

// executeJob 执行单个定时任务
func (s *Scheduler) executeJob(job config.CronJob) {
	logrus.Infof("executing job: %s", job.Name)

	if job.PruneReputation {
		if s.reputation == nil {
			logrus.Warnf("job %s skipped: reputation cache disabled", job.Name)
			return
		}
		maxAge := time.Duration(s.cacheDays) * 24 * time.Hour
		deleted, err := s.reputation.DeleteStale(maxAge)
		if err != nil {
			logrus.WithError(err).Warnf("job %s failed", job.Name)
			return
		}
		logrus.Infof("job %s pruned %d stale reputation records", job.Name, deleted)
	}
}
