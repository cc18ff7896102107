package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AlienQ7/Task/internal/logger"
	"github.com/AlienQ7/Task/internal/service"
)

// ShowDashboard 渲染每日任务面板
func (a *API) ShowDashboard(c *gin.Context) {
	username := currentUsername(c)

	snap, err := a.progression.Overview(username)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			// 账号已被删除但浏览器还带着旧会话
			a.Logout(c)
			return
		}
		logger.S.Errorw("failed to load dashboard", "username", username, "error", err)
		c.String(http.StatusInternalServerError, "内部错误，请稍后再试")
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"title":          "每日任务",
		"username":       username,
		"tasks":          snap.Tasks,
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

// CreateTask 新建任务
func (a *API) CreateTask(c *gin.Context) {
	var req struct {
		Text      string `json:"text"`
		Permanent bool   `json:"permanent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的请求体"})
		return
	}

	snap, err := a.progression.AddTask(currentUsername(c), req.Text, req.Permanent)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSnapshot(c, snap)
}

// ToggleTask 翻转任务完成状态
func (a *API) ToggleTask(c *gin.Context) {
	snap, err := a.progression.ToggleTask(currentUsername(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSnapshot(c, snap)
}

// SetTaskPermanent 切换任务的每日循环模式
func (a *API) SetTaskPermanent(c *gin.Context) {
	var req struct {
		Permanent bool `json:"permanent"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的请求体"})
		return
	}

	snap, err := a.progression.SetTaskPermanent(currentUsername(c), c.Param("id"), req.Permanent)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSnapshot(c, snap)
}

// DeleteTask 删除任务
func (a *API) DeleteTask(c *gin.Context) {
	snap, err := a.progression.DeleteTask(currentUsername(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSnapshot(c, snap)
}

// Checkin 领取每日签到奖励
func (a *API) Checkin(c *gin.Context) {
	snap, err := a.progression.CollectCheckin(currentUsername(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondSnapshot(c, snap)
}

// SaveObjective 更新个人目标
func (a *API) SaveObjective(c *gin.Context) {
	var req struct {
		Objective string `json:"objective"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的请求体"})
		return
	}

	snap, err := a.progression.SaveObjective(currentUsername(c), req.Objective)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSnapshot(c, snap)
}

// SaveQuota 更新每日任务配额
func (a *API) SaveQuota(c *gin.Context) {
	var req struct {
		Quota int `json:"quota"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的请求体"})
		return
	}

	snap, err := a.progression.SaveQuota(currentUsername(c), req.Quota)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSnapshot(c, snap)
}

// SetPenalty 开关每日惩罚结算
func (a *API) SetPenalty(c *gin.Context) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "无效的请求体"})
		return
	}

	snap, err := a.progression.SetPenaltyEnabled(currentUsername(c), req.Enabled)
	if err != nil {
		respondError(c, err)
		return
	}
	respondSnapshot(c, snap)
}
