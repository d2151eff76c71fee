package model

import (
	"time"
)

// ReputationKind 信誉查询对象类型
type ReputationKind string

const (
	ReputationKindEmail ReputationKind = "email"
	ReputationKindPhone ReputationKind = "phone"
)

// ReputationRecord 发件人信誉查询缓存
type ReputationRecord struct {
	ID         uint           `json:"id"`
	Address    string         `json:"address" gorm:"uniqueIndex:idx_address_kind"` // 邮箱地址或电话号码
	Kind       ReputationKind `json:"kind" gorm:"uniqueIndex:idx_address_kind"`
	Valid      bool           `json:"valid"`      // 语法是否有效
	Disposable bool           `json:"disposable"` // 是否一次性邮箱域名
	Detail     string         `json:"detail"`     // 域名或号码类型等附加信息
	CheckedAt  time.Time      `json:"checked_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
