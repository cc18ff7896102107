package db

import (
	"gorm.io/gorm"
)

// Task 定义了任务模型
// PublicID 为创建时分配的 uuid，对外暴露且不可变；展示顺序按插入顺序（主键递增）。
// Claimed 标记当前这次完成是否已经发放过奖励；Permanent 区分每日循环任务与一次性任务。
type Task struct {
	gorm.Model
	UserID   uint   `gorm:"index;not null"`
	PublicID string `gorm:"uniqueIndex;not null"`
	Text     string `gorm:"not null"`

	Completed bool `gorm:"default:false"`
	Claimed   bool `gorm:"default:false"`
	Permanent bool `gorm:"default:false"`
}
