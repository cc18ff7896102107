package service

import (
	"strings"

	"github.com/google/uuid"

	"github.com/AlienQ7/Task/internal/db"
)

// 任务生命周期操作：对任务集合与用户计数器做增删改。
// 奖励资格规则：首次完成（claimed=false）或循环任务的当日再完成才发奖，
// 取消完成从不退还已发放的奖励。

// addTask 追加一个新任务。描述为空时拒绝，不影响积分。
func addTask(tasks []db.Task, userID uint, text string, permanent bool) ([]db.Task, *db.Task, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return tasks, nil, ErrEmptyTaskText
	}

	task := db.Task{
		UserID:    userID,
		PublicID:  uuid.NewString(),
		Text:      trimmed,
		Permanent: permanent,
	}
	tasks = append(tasks, task)
	return tasks, &tasks[len(tasks)-1], nil
}

// toggleTask 翻转任务完成状态并维护用户每日计数。
// false→true 时仅当 claimed=false 才发奖并置 claimed；循环任务的 claimed
// 在每日重置时清零，因此每天最多再发一次。
// true→false 只回退每日计数（下限 0），奖励不回收。
func toggleTask(tasks []db.Task, id string, user *db.User, taskReward int) (*db.Task, bool, error) {
	task := findTask(tasks, id)
	if task == nil {
		return nil, false, ErrTaskNotFound
	}

	task.Completed = !task.Completed

	if task.Completed {
		user.DailyCompleted++
		if !task.Claimed {
			claimReward(user, taskReward)
			task.Claimed = true
			return task, true, nil
		}
		return task, false, nil
	}

	if user.DailyCompleted > 0 {
		user.DailyCompleted--
	}
	return task, false, nil
}

// deleteTask 无条件移除任务；已完成任务的历史奖励保留。
func deleteTask(tasks []db.Task, id string) ([]db.Task, error) {
	for i := range tasks {
		if tasks[i].PublicID == id {
			return append(tasks[:i], tasks[i+1:]...), nil
		}
	}
	return tasks, ErrTaskNotFound
}

// setPermanent 切换任务的循环标记，并强制清空完成/领奖状态，
// 避免切换模式后残留已领奖但不再循环的中间态。
func setPermanent(tasks []db.Task, id string, permanent bool) (*db.Task, error) {
	task := findTask(tasks, id)
	if task == nil {
		return nil, ErrTaskNotFound
	}

	task.Permanent = permanent
	task.Completed = false
	task.Claimed = false
	return task, nil
}

func findTask(tasks []db.Task, id string) *db.Task {
	for i := range tasks {
		if tasks[i].PublicID == id {
			return &tasks[i]
		}
	}
	return nil
}
