package repository

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"scamwall/internal/model"
)

// ReputationRepository 发件人信誉缓存仓库接口
type ReputationRepository interface {
	FindByAddress(address string, kind model.ReputationKind) (*model.ReputationRecord, error)
	CreateOrUpdate(record *model.ReputationRecord) error
	DeleteStale(maxAge time.Duration) (int64, error)
}

// GormReputationRepository 基于GORM的信誉缓存仓库实现
type GormReputationRepository struct {
	db *gorm.DB
}

// NewReputationRepository 创建信誉缓存仓库
func NewReputationRepository(db *gorm.DB) ReputationRepository {
	return &GormReputationRepository{db: db}
}

// FindByAddress 按地址和类型查找缓存记录，未命中返回(nil, nil)
func (r *GormReputationRepository) FindByAddress(address string, kind model.ReputationKind) (*model.ReputationRecord, error) {
	var record model.ReputationRecord
	result := r.db.Where("address = ? AND kind = ?", strings.ToLower(address), kind).First(&record)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &record, nil
}

// CreateOrUpdate 创建或更新缓存记录
func (r *GormReputationRepository) CreateOrUpdate(record *model.ReputationRecord) error {
	if record == nil {
		return errors.New("reputation record cannot be nil")
	}
	record.Address = strings.ToLower(record.Address)

	existing, err := r.FindByAddress(record.Address, record.Kind)
	if err != nil {
		return err
	}

	if existing != nil {
		record.ID = existing.ID
		record.UpdatedAt = time.Now()
		return r.db.Save(record).Error
	}
	return r.db.Create(record).Error
}

// DeleteStale 清理过期缓存，返回删除条数
func (r *GormReputationRepository) DeleteStale(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)
	result := r.db.Where("checked_at < ?", cutoff).Delete(&model.ReputationRecord{})
	return result.RowsAffected, result.Error
}
