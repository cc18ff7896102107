package service

import (
	"time"

	"github.com/AlienQ7/Task/internal/config"
	"github.com/AlienQ7/Task/internal/db"
)

// applyDailyReset 执行跨日翻转：上次重置早于今日零点才生效，当日重复调用是空操作。
// 生效时依次：配额未达且惩罚开启则记一次失败并累加扣除；循环任务清空
// 完成/领奖状态；一次性任务原样保留；每日计数归零；记录重置时间。
// 返回值表示状态是否发生变化。
func applyDailyReset(user *db.User, tasks []db.Task, now, startOfToday time.Time, bal config.Balance) bool {
	if user.LastResetAt >= startOfToday.Unix() {
		return false
	}

	if user.PenaltyEnabled && user.DailyCompleted < user.DailyQuota {
		user.FailedDays++
		user.PenaltyDeduction += bal.DailyPenalty
	}

	for i := range tasks {
		if tasks[i].Permanent {
			tasks[i].Completed = false
			tasks[i].Claimed = false
		}
	}

	user.DailyCompleted = 0
	user.LastResetAt = now.Unix()
	return true
}
