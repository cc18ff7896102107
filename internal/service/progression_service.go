package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/AlienQ7/Task/internal/clock"
	"github.com/AlienQ7/Task/internal/config"
	"github.com/AlienQ7/Task/internal/db"
)

// Store 抽象进度持久化；gorm 实现位于 internal/db。
// 约定：任务集合先于用户记录写回，崩溃时不会出现已扣积分但任务未保存的状态。
type Store interface {
	LoadUser(username string) (*db.User, error)
	SaveUser(user *db.User) error
	CreateUser(user *db.User) error
	LoadTasks(userID uint) ([]db.Task, error)
	SaveTasks(userID uint, tasks []db.Task) error
	DeleteUser(username string) error
}

// Snapshot 是一次操作后的用户进度快照，交给视图层渲染。
type Snapshot struct {
	User       db.User
	Tasks      []db.Task
	TaskPoints int
	CanCollect bool
}

// ProgressionService 组合任务生命周期、每日重置、积分账本与等级推导，
// 对路由层暴露按用户名的进度操作。所有操作串行化到同一用户名上，
// 防止并发请求读到旧状态互相覆盖。
type ProgressionService struct {
	store    Store
	clock    clock.Clock
	bal      config.Balance
	ranks    RankTable
	sanitize *bluemonday.Policy
	locks    sync.Map // username -> *sync.Mutex
}

// NewProgressionService 构造 ProgressionService。
func NewProgressionService(store Store, clk clock.Clock, bal config.Balance, ranks RankTable) *ProgressionService {
	return &ProgressionService{
		store:    store,
		clock:    clk,
		bal:      bal,
		ranks:    ranks,
		sanitize: bluemonday.StrictPolicy(),
	}
}

// Ranks 返回当前使用的等级表。
func (s *ProgressionService) Ranks() RankTable {
	return s.ranks
}

// Overview 加载用户进度，必要时执行跨日重置，返回快照。
func (s *ProgressionService) Overview(username string) (*Snapshot, error) {
	return s.withUser(username, func(user *db.User, tasks []db.Task) ([]db.Task, error) {
		return tasks, nil
	})
}

// AddTask 新增一个任务，描述为空时返回 ErrEmptyTaskText。
func (s *ProgressionService) AddTask(username, text string, permanent bool) (*Snapshot, error) {
	return s.withUser(username, func(user *db.User, tasks []db.Task) ([]db.Task, error) {
		updated, _, err := addTask(tasks, user.ID, s.sanitize.Sanitize(text), permanent)
		return updated, err
	})
}

// ToggleTask 翻转任务完成状态。
func (s *ProgressionService) ToggleTask(username, id string) (*Snapshot, error) {
	return s.withUser(username, func(user *db.User, tasks []db.Task) ([]db.Task, error) {
		_, _, err := toggleTask(tasks, id, user, s.bal.TaskReward)
		return tasks, err
	})
}

// DeleteTask 删除任务；历史奖励不回收。
func (s *ProgressionService) DeleteTask(username, id string) (*Snapshot, error) {
	return s.withUser(username, func(user *db.User, tasks []db.Task) ([]db.Task, error) {
		return deleteTask(tasks, id)
	})
}

// SetTaskPermanent 切换任务循环标记并清空其完成状态。
func (s *ProgressionService) SetTaskPermanent(username, id string, permanent bool) (*Snapshot, error) {
	return s.withUser(username, func(user *db.User, tasks []db.Task) ([]db.Task, error) {
		_, err := setPermanent(tasks, id, permanent)
		return tasks, err
	})
}

// CollectCheckin 领取每日签到奖励，一日一次。
func (s *ProgressionService) CollectCheckin(username string) (*Snapshot, error) {
	return s.withUser(username, func(user *db.User, tasks []db.Task) ([]db.Task, error) {
		return tasks, collectCheckin(user, s.clock.Now(), s.clock.StartOfToday(), s.bal.CheckinReward)
	})
}

// SaveObjective 更新用户目标，内容为空时返回 ErrEmptyObjective。
func (s *ProgressionService) SaveObjective(username, objective string) (*Snapshot, error) {
	return s.withUser(username, func(user *db.User, tasks []db.Task) ([]db.Task, error) {
		trimmed := strings.TrimSpace(s.sanitize.Sanitize(objective))
		if trimmed == "" {
			return tasks, ErrEmptyObjective
		}
		user.Objective = trimmed
		return tasks, nil
	})
}

// SaveQuota 更新每日任务配额，至少为 1。
func (s *ProgressionService) SaveQuota(username string, quota int) (*Snapshot, error) {
	return s.withUser(username, func(user *db.User, tasks []db.Task) ([]db.Task, error) {
		if quota < 1 {
			return tasks, ErrInvalidQuota
		}
		user.DailyQuota = quota
		return tasks, nil
	})
}

// SetPenaltyEnabled 切换惩罚系统开关。
func (s *ProgressionService) SetPenaltyEnabled(username string, enabled bool) (*Snapshot, error) {
	return s.withUser(username, func(user *db.User, tasks []db.Task) ([]db.Task, error) {
		user.PenaltyEnabled = enabled
		return tasks, nil
	})
}

// withUser 是所有进度操作的公共骨架：
// 加载 → 跨日重置（幂等）→ 执行动作 → 重算等级与积分投影 → 先存任务再存用户。
// 动作返回错误时不持久化任何变更。
func (s *ProgressionService) withUser(username string, fn func(user *db.User, tasks []db.Task) ([]db.Task, error)) (*Snapshot, error) {
	mu := s.lockFor(username)
	mu.Lock()
	defer mu.Unlock()

	user, err := s.store.LoadUser(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	tasks, err := s.store.LoadTasks(user.ID)
	if err != nil {
		return nil, err
	}

	applyDailyReset(user, tasks, s.clock.Now(), s.clock.StartOfToday(), s.bal)

	tasks, err = fn(user, tasks)
	if err != nil {
		return nil, err
	}

	user.Rank = s.ranks.Of(user.CheckinPoints)

	if err := s.store.SaveTasks(user.ID, tasks); err != nil {
		return nil, err
	}
	if err := s.store.SaveUser(user); err != nil {
		return nil, err
	}

	return &Snapshot{
		User:       *user,
		Tasks:      tasks,
		TaskPoints: user.TaskPoints(),
		CanCollect: user.LastCheckinAt < s.clock.StartOfToday().Unix(),
	}, nil
}

func (s *ProgressionService) lockFor(username string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(username, &sync.Mutex{})
	return v.(*sync.Mutex)
}
