package config

import (
	"os"
	"strings"
)

// Balance 定义进度系统的数值配置：奖励、惩罚、每日配额与重置时区。
// 由 Load 注入到服务层，不作为包级全局使用。
type Balance struct {
	// 每日签到奖励（💎）
	CheckinReward int
	// 单个任务完成奖励（TP）
	TaskReward int
	// 未达配额时的每日惩罚扣除
	DailyPenalty int
	// 新用户默认每日任务配额
	DefaultQuota int
	// 日界计算所用的 IANA 时区
	Timezone string
}

// DefaultBalance 返回默认数值配置。
func DefaultBalance() Balance {
	return Balance{
		CheckinReward: 10,
		TaskReward:    5,
		DailyPenalty:  5,
		DefaultQuota:  3,
		Timezone:      "Asia/Kolkata",
	}
}

func loadBalance() Balance {
	b := DefaultBalance()
	b.CheckinReward = intEnv("CHECKIN_REWARD", b.CheckinReward)
	b.TaskReward = intEnv("TASK_REWARD", b.TaskReward)
	b.DailyPenalty = intEnv("DAILY_PENALTY", b.DailyPenalty)
	b.DefaultQuota = intEnv("DEFAULT_QUOTA", b.DefaultQuota)
	if zone := strings.TrimSpace(os.Getenv("RESET_TIMEZONE")); zone != "" {
		b.Timezone = zone
	}
	return b
}
