package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"scamwall/internal/model"
)

// Config 应用程序配置
type Config struct {
	Token    string    `yaml:"token"`
	Server   Server    `yaml:"server"`
	Database Database  `yaml:"database"`
	Detector Detector  `yaml:"detector"`
	Alert    Alert     `yaml:"alert"`
	CronJobs []CronJob `yaml:"cron_jobs"`
}

// Server 服务器配置
type Server struct {
	Address string `yaml:"address"`
}

// Database 数据库配置
type Database struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Detector 检测器配置
type Detector struct {
	TimeoutSeconds      int      `yaml:"timeout_seconds"`       // 单个检测器调用超时
	TranscriberEndpoint string   `yaml:"transcriber_endpoint"`  // 语音转写服务地址，空则不启用
	SpoofModelEndpoint  string   `yaml:"spoof_model_endpoint"`  // 音频伪造模型地址，空则用占位逻辑
	ExtraDisposable     []string `yaml:"extra_disposable"`      // 额外的一次性邮箱域名
	ReputationCacheDays int      `yaml:"reputation_cache_days"` // 信誉缓存保留天数
	DisableCache        bool     `yaml:"disable_cache"`         // 关闭信誉缓存
}

// Alert 告警推送配置
type Alert struct {
	MinLevel model.RiskLevel `yaml:"min_level"` // 达到该等级才触发webhook
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// WebhookConfig webhook配置
type WebhookConfig struct {
	Name   string `yaml:"name"`
	Method string `yaml:"method"`
	URL    string `yaml:"url"`
	Body   string `yaml:"body"` // 支持{{key}}占位符
}

// CronJob 定时任务配置
type CronJob struct {
	Name            string `yaml:"name"`
	Schedule        string `yaml:"schedule"`
	PruneReputation bool   `yaml:"prune_reputation"` // 清理过期信誉缓存
}

// LoadConfig 从文件加载配置
func LoadConfig() (*Config, error) {
	// 1. 尝试从环境变量获取配置文件路径
	configPath := os.Getenv("CONFIG_PATH")

	// 2. 如果环境变量未设置，使用默认路径
	if configPath == "" {
		configPath = "config.yaml"
	}

	// 3. 读取配置文件
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// 4. 解析YAML
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()
	return &config, nil
}

// Default 不依赖配置文件的默认配置
func Default() *Config {
	config := &Config{}
	config.applyDefaults()
	return config
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "127.0.0.1:8080"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
		c.Database.DSN = "scamwall.db"
	}
	if c.Detector.TimeoutSeconds == 0 {
		c.Detector.TimeoutSeconds = 10
	}
	if c.Detector.ReputationCacheDays == 0 {
		c.Detector.ReputationCacheDays = 7
	}
	if c.Alert.MinLevel == "" {
		c.Alert.MinLevel = model.RiskLevelCritical
	}
}
