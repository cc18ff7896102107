package db

import (
	"gorm.io/gorm"
)

// User 定义了用户进度模型：积分、惩罚与每日状态全部挂在用户记录上。
// Rank 仅是缓存列，真实值始终由签到积分重新推导。
// LastCheckinAt/LastResetAt 为 epoch 秒，与时区日界比较时再换算。
type User struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"`

	Objective string
	Rank      string

	CheckinPoints     int `gorm:"default:0"`
	ClaimedTaskPoints int `gorm:"default:0"`
	PenaltyDeduction  int `gorm:"default:0"`
	FailedDays        int `gorm:"default:0"`

	LastCheckinAt  int64 `gorm:"default:0"`
	LastResetAt    int64 `gorm:"default:0"`
	DailyCompleted int   `gorm:"default:0"`
	DailyQuota     int   `gorm:"default:3"`

	PenaltyEnabled bool `gorm:"default:true"`
}

// TaskPoints 返回可支配任务积分：已领取奖励减去累计惩罚。
// 纯投影，从不落库，惩罚超出奖励时允许为负。
func (u *User) TaskPoints() int {
	return u.ClaimedTaskPoints - u.PenaltyDeduction
}
