package service

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/AlienQ7/Task/internal/clock"
	"github.com/AlienQ7/Task/internal/config"
	"github.com/AlienQ7/Task/internal/db"
)

// AuthService 负责注册、登录与账号注销。
type AuthService struct {
	store Store
	clock clock.Clock
	bal   config.Balance
	ranks RankTable
}

// NewAuthService 构造 AuthService。
func NewAuthService(store Store, clk clock.Clock, bal config.Balance, ranks RankTable) *AuthService {
	return &AuthService{store: store, clock: clk, bal: bal, ranks: ranks}
}

// Register 创建新账号：用户名至少 3 字符、密码至少 5 字符，用户名唯一。
// 新用户计数全部归零、使用默认配额，LastResetAt 记为当前时间，
// 注册当天不会因为空配额立即触发惩罚。
func (s *AuthService) Register(username, password string) (*db.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(password) < 5 {
		return nil, ErrWeakCredentials
	}

	if _, err := s.store.LoadUser(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &db.User{
		Username:       username,
		Password:       string(hashed),
		Objective:      "Pro max programmer xd.",
		Rank:           s.ranks.Of(0),
		DailyQuota:     s.bal.DefaultQuota,
		PenaltyEnabled: true,
		LastResetAt:    s.clock.Now().Unix(),
	}

	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login 校验用户名与密码，成功时返回用户记录。
func (s *AuthService) Login(username, password string) (*db.User, error) {
	user, err := s.store.LoadUser(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// DeleteAccount 删除用户及其全部任务。
func (s *AuthService) DeleteAccount(username string) error {
	if err := s.store.DeleteUser(username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
