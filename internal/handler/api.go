package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AlienQ7/Task/internal/db"
	"github.com/AlienQ7/Task/internal/service"
)

// API 持有所有 HTTP 处理器共享的服务依赖。
type API struct {
	auth        *service.AuthService
	progression *service.ProgressionService
}

// NewAPI 构造处理器集合。
func NewAPI(auth *service.AuthService, progression *service.ProgressionService) *API {
	return &API{
		auth:        auth,
		progression: progression,
	}
}

// taskView 是任务在 JSON 接口中的形态，隐藏数据库内部字段。
type taskView struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Claimed   bool   `json:"claimed"`
	Permanent bool   `json:"permanent"`
}

func taskViews(tasks []db.Task) []taskView {
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, taskView{
			ID:        t.PublicID,
			Text:      t.Text,
			Completed: t.Completed,
			Claimed:   t.Claimed,
			Permanent: t.Permanent,
		})
	}
	return views
}

// respondSnapshot 输出统一的成功响应：用户进度快照加任务列表。
func respondSnapshot(c *gin.Context, snap *service.Snapshot) {
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"tasks":          taskViews(snap.Tasks),
		"checkinPoints":  snap.User.CheckinPoints,
		"taskPoints":     snap.TaskPoints,
		"rank":           snap.User.Rank,
		"objective":      snap.User.Objective,
		"dailyCompleted": snap.User.DailyCompleted,
		"dailyQuota":     snap.User.DailyQuota,
		"failedDays":     snap.User.FailedDays,
		"penaltyEnabled": snap.User.PenaltyEnabled,
		"canCollect":     snap.CanCollect,
	})
}

// respondError 把服务层哨兵错误映射为 HTTP 状态码与统一的失败响应。
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "内部错误，请稍后再试"

	switch {
	case errors.Is(err, service.ErrUserNotFound):
		status = http.StatusNotFound
		message = "用户不存在"
	case errors.Is(err, service.ErrTaskNotFound):
		status = http.StatusNotFound
		message = "任务不存在"
	case errors.Is(err, service.ErrEmptyTaskText):
		status = http.StatusBadRequest
		message = "任务描述不能为空"
	case errors.Is(err, service.ErrEmptyObjective):
		status = http.StatusBadRequest
		message = "目标不能为空"
	case errors.Is(err, service.ErrInvalidQuota):
		status = http.StatusBadRequest
		message = "每日配额至少为 1"
	case errors.Is(err, service.ErrAlreadyCollected):
		status = http.StatusConflict
		message = "今日签到奖励已领取"
	case errors.Is(err, service.ErrWeakCredentials):
		status = http.StatusBadRequest
		message = "用户名至少 3 个字符，密码至少 5 个字符"
	case errors.Is(err, service.ErrUsernameTaken):
		status = http.StatusConflict
		message = "用户名已被占用"
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = "用户名或密码错误"
	}

	c.JSON(status, gin.H{"success": false, "message": message})
}
