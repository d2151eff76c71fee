package detector

import (
	"fmt"
	"sync"
)

// Registry 检测器注册表
type Registry interface {
	Register(d Detector) error
	Get(name string) (Detector, error)
	Names() []string
}

// registry 检测器注册表实现
type registry struct {
	detectors map[string]Detector
	mu        sync.RWMutex
}

// NewRegistry 创建检测器注册表
func NewRegistry() Registry {
	return &registry{
		detectors: make(map[string]Detector),
	}
}

// Register 注册检测器
func (r *registry) Register(d Detector) error {
	if d == nil {
		return fmt.Errorf("detector cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.detectors[d.Name()]; exists {
		return fmt.Errorf("detector %s already registered", d.Name())
	}

	r.detectors[d.Name()] = d
	return nil
}

// Get 按名称获取检测器
func (r *registry) Get(name string) (Detector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, exists := r.detectors[name]
	if !exists {
		return nil, fmt.Errorf("detector not found for name: %s", name)
	}
	return d, nil
}

// Names 获取所有已注册检测器名称
func (r *registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.detectors))
	for name := range r.detectors {
		names = append(names, name)
	}
	return names
}
