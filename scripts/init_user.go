package main

import (
	"fmt"
	"log"
	"os"

	"github.com/AlienQ7/Task/internal/clock"
	"github.com/AlienQ7/Task/internal/config"
	"github.com/AlienQ7/Task/internal/db"
	"github.com/AlienQ7/Task/internal/service"
)

// 初始化一个本地演示账号，方便首次部署后直接登录体验。
func main() {
	cfg := config.Load()

	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	username := os.Getenv("SEED_USERNAME")
	if username == "" {
		username = "commander"
	}
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "start123"
	}

	var count int64
	db.DB.Model(&db.User{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		fmt.Println("用户已存在，无需初始化")
		return
	}

	clk, err := clock.NewZoneClock(cfg.Balance.Timezone)
	if err != nil {
		log.Fatal("时区加载失败:", err)
	}

	auth := service.NewAuthService(db.NewStore(db.DB), clk, cfg.Balance, service.DefaultRankTable())
	user, err := auth.Register(username, password)
	if err != nil {
		log.Fatal("创建用户失败:", err)
	}

	fmt.Println("演示账号创建成功")
	fmt.Println("用户名:", user.Username)
	fmt.Println("密码:", password)
}
