package service

import "errors"

var (
	// ErrUserNotFound 在指定用户不存在时返回
	ErrUserNotFound = errors.New("user not found")
	// ErrTaskNotFound 在指定任务不存在时返回
	ErrTaskNotFound = errors.New("task not found")
	// ErrEmptyTaskText 在任务描述为空时返回
	ErrEmptyTaskText = errors.New("task text is required")
	// ErrEmptyObjective 在目标内容为空时返回
	ErrEmptyObjective = errors.New("objective is required")
	// ErrAlreadyCollected 在当日奖励已领取后再次领取时返回
	ErrAlreadyCollected = errors.New("daily reward already collected")
	// ErrInvalidQuota 在每日配额小于 1 时返回
	ErrInvalidQuota = errors.New("daily quota must be at least 1")
	// ErrInvalidCredentials 在用户名或密码校验失败时返回
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUsernameTaken 在注册用户名已被占用时返回
	ErrUsernameTaken = errors.New("username already taken")
	// ErrWeakCredentials 在注册信息不满足最低长度要求时返回
	ErrWeakCredentials = errors.New("username must be at least 3 chars and password at least 5 chars")
)
