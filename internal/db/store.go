package db

import (
	"fmt"

	"gorm.io/gorm"
)

// Store 是 gorm 版本的进度存储实现，按用户名。
// 任务读写整表交换：保存时删除不在集合中的行，其余逐条 upsert。
type Store struct {
	db *gorm.DB
}

// NewStore 构造 Store
func NewStore(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// LoadUser 按用户名加载进度记录，未找到时返回 gorm.ErrRecordNotFound。
func (s *Store) LoadUser(username string) (*User, error) {
	var user User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SaveUser 保存进度记录。
func (s *Store) SaveUser(user *User) error {
	if err := s.db.Save(user).Error; err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// CreateUser 创建新用户。
func (s *Store) CreateUser(user *User) error {
	if err := s.db.Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// LoadTasks 按插入顺序返回用户的任务列表。
func (s *Store) LoadTasks(userID uint) ([]Task, error) {
	var tasks []Task
	if err := s.db.Where("user_id = ?", userID).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	return tasks, nil
}

// SaveTasks 将任务集合写回：集合外的行删除，集合内逐条保存。
func (s *Store) SaveTasks(userID uint, tasks []Task) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		keep := make([]string, 0, len(tasks))
		for i := range tasks {
			keep = append(keep, tasks[i].PublicID)
		}

		del := tx.Where("user_id = ?", userID)
		if len(keep) > 0 {
			del = del.Where("public_id NOT IN ?", keep)
		}
		if err := del.Delete(&Task{}).Error; err != nil {
			return err
		}

		for i := range tasks {
			tasks[i].UserID = userID
			if err := tx.Save(&tasks[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// DeleteUser 删除用户及其全部任务。
func (s *Store) DeleteUser(username string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user User
		if err := tx.Where("username = ?", username).First(&user).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&Task{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&user).Error
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
