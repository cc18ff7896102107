package service

import (
	"time"

	"github.com/AlienQ7/Task/internal/db"
)

// collectCheckin 发放每日签到奖励。
// 一日一次：上次领取时间不早于今日零点则拒绝。
func collectCheckin(user *db.User, now, startOfToday time.Time, reward int) error {
	if user.LastCheckinAt >= startOfToday.Unix() {
		return ErrAlreadyCollected
	}
	user.CheckinPoints += reward
	user.LastCheckinAt = now.Unix()
	return nil
}

// claimReward 发放单个任务完成奖励。
// 资格判断在任务生命周期逻辑里完成，这里无条件累加。
func claimReward(user *db.User, reward int) {
	user.ClaimedTaskPoints += reward
}
