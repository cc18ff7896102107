package service

import (
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AlienQ7/Task/internal/clock"
	"github.com/AlienQ7/Task/internal/config"
	"github.com/AlienQ7/Task/internal/db"
)

func testBalance() config.Balance {
	return config.Balance{
		CheckinReward: 10,
		TaskReward:    5,
		DailyPenalty:  5,
		DefaultQuota:  2,
		Timezone:      "Asia/Kolkata",
	}
}

func setupProgressionTest(t *testing.T) (*ProgressionService, *clock.FakeClock, func()) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Task{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}
	fc := clock.NewFakeClock(time.Date(2024, 5, 1, 9, 0, 0, 0, loc))

	svc := NewProgressionService(db.NewStore(gdb), fc, testBalance(), DefaultRankTable())

	return svc, fc, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func seedUser(t *testing.T, svc *ProgressionService, fc *clock.FakeClock, username string) *db.User {
	t.Helper()
	user := &db.User{
		Username:       username,
		Password:       "not-a-real-hash",
		Rank:           "Aspiring 🚀",
		DailyQuota:     2,
		PenaltyEnabled: true,
		LastResetAt:    fc.Now().Unix(),
	}
	if err := svc.store.CreateUser(user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func mustAddTask(t *testing.T, svc *ProgressionService, username, text string, permanent bool) db.Task {
	t.Helper()
	snap, err := svc.AddTask(username, text, permanent)
	if err != nil {
		t.Fatalf("AddTask returned error: %v", err)
	}
	return snap.Tasks[len(snap.Tasks)-1]
}

func TestAddTaskValidation(t *testing.T) {
	svc, fc, cleanup := setupProgressionTest(t)
	defer cleanup()
	seedUser(t, svc, fc, "alien")

	if _, err := svc.AddTask("alien", "   ", false); !errors.Is(err, ErrEmptyTaskText) {
		t.Fatalf("expected ErrEmptyTaskText, got %v", err)
	}

	snap, err := svc.Overview("alien")
	if err != nil {
		t.Fatalf("Overview returned error: %v", err)
	}
	if len(snap.Tasks) != 0 {
		t.Fatalf("expected no tasks persisted after validation failure, got %d", len(snap.Tasks))
	}

	task := mustAddTask(t, svc, "alien", "write tests", false)
	if task.PublicID == "" {
		t.Fatal("expected task to get a public id")
	}
	if task.Completed || task.Claimed {
		t.Fatal("expected new task to start incomplete and unclaimed")
	}
}

func TestAddTaskUnknownUser(t *testing.T) {
	svc, _, cleanup := setupProgressionTest(t)
	defer cleanup()

	if _, err := svc.AddTask("ghost", "anything", false); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestToggleOneTimeTaskNeverRewardsTwice(t *testing.T) {
	svc, fc, cleanup := setupProgressionTest(t)
	defer cleanup()
	seedUser(t, svc, fc, "alien")
	task := mustAddTask(t, svc, "alien", "one-shot", false)

	snap, err := svc.ToggleTask("alien", task.PublicID)
	if err != nil {
		t.Fatalf("ToggleTask returned error: %v", err)
	}
	if snap.User.ClaimedTaskPoints != 5 {
		t.Fatalf("expected 5 claimed points, got %d", snap.User.ClaimedTaskPoints)
	}
	if snap.User.DailyCompleted != 1 {
		t.Fatalf("expected daily count 1, got %d", snap.User.DailyCompleted)
	}

	// 取消完成：计数回退，奖励不回收
	snap, err = svc.ToggleTask("alien", task.PublicID)
	if err != nil {
		t.Fatalf("ToggleTask returned error: %v", err)
	}
	if snap.User.ClaimedTaskPoints != 5 {
		t.Fatalf("expected reward to stand after untoggle, got %d", snap.User.ClaimedTaskPoints)
	}
	if snap.User.DailyCompleted != 0 {
		t.Fatalf("expected daily count 0, got %d", snap.User.DailyCompleted)
	}

	// 再次完成：claimed 已置位，不再发奖
	snap, err = svc.ToggleTask("alien", task.PublicID)
	if err != nil {
		t.Fatalf("ToggleTask returned error: %v", err)
	}
	if snap.User.ClaimedTaskPoints != 5 {
		t.Fatalf("expected no second reward, got %d", snap.User.ClaimedTaskPoints)
	}
	if !snap.Tasks[0].Claimed {
		t.Fatal("expected claimed flag to stay set")
	}
}

func TestToggleUnknownTask(t *testing.T) {
	svc, fc, cleanup := setupProgressionTest(t)
	defer cleanup()
	seedUser(t, svc, fc, "alien")

	if _, err := svc.ToggleTask("alien", "no-such-id"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestPermanentTaskEarnsAgainAfterReset(t *testing.T) {
	svc, fc, cleanup := setupProgressionTest(t)
	defer cleanup()
	seedUser(t, svc, fc, "alien")
	task := mustAddTask(t, svc, "alien", "daily pushups", true)

	snap, err := svc.ToggleTask("alien", task.PublicID)
	if err != nil {
		t.Fatalf("ToggleTask returned error: %v", err)
	}
	if snap.User.ClaimedTaskPoints != 5 {
		t.Fatalf("expected 5 points, got %d", snap.User.ClaimedTaskPoints)
	}

	// 同一天内取消再完成不重复发奖
	if _, err := svc.ToggleTask("alien", task.PublicID); err != nil {
		t.Fatalf("ToggleTask returned error: %v", err)
	}
	snap, err = svc.ToggleTask("alien", task.PublicID)
	if err != nil {
		t.Fatalf("ToggleTask returned error: %v", err)
	}
	if snap.User.ClaimedTaskPoints != 5 {
		t.Fatalf("expected at most one reward per day, got %d", snap.User.ClaimedTaskPoints)
	}

	// 跨日后循环任务恢复未完成，可再次得奖
	fc.Advance(24 * time.Hour)
	snap, err = svc.Overview("alien")
	if err != nil {
		t.Fatalf("Overview returned error: %v", err)
	}
	if snap.Tasks[0].Completed || snap.Tasks[0].Claimed {
		t.Fatal("expected permanent task to reset to incomplete and unclaimed")
	}

	snap, err = svc.ToggleTask("alien", task.PublicID)
	if err != nil {
		t.Fatalf("ToggleTask returned error: %v", err)
	}
	if snap.User.ClaimedTaskPoints != 10 {
		t.Fatalf("expected reward again after reset, got %d", snap.User.ClaimedTaskPoints)
	}
}

func TestOneTimeTasksSurviveReset(t *testing.T) {
	svc, fc, cleanup := setupProgressionTest(t)
	defer cleanup()
	seedUser(t, svc, fc, "alien")
	done := mustAddTask(t, svc, "alien", "finished chore", false)
	if _, err := svc.ToggleTask("alien", done.PublicID); err != nil {
		t.Fatalf("ToggleTask returned error: %v", err)
	}
	mustAddTask(t, svc, "alien", "pending chore", false)

	fc.Advance(24 * time.Hour)
	snap, err := svc.Overview("alien")
	if err != nil {
		t.Fatalf("Overview returned error: %v", err)
	}

	if len(snap.Tasks) != 2 {
		t.Fatalf("expected one-time tasks to persist across reset, got %d", len(snap.Tasks))
	}
	if !snap.Tasks[0].Completed || !snap.Tasks[0].Claimed {
		t.Fatal("expected completed one-time task to keep its state")
	}
	if snap.Tasks[1].Completed {
		t.Fatal("expected pending one-time task to stay incomplete")
	}
}

func TestDailyResetAppliesPenalty(t *testing.T) {
	svc, fc, cleanup := setupProgressionTest(t)
	defer cleanup()
	seedUser(t, svc, fc, "alien")

	// 配额 2，只完成 1 个
	task := mustAddTask(t, svc, "alien", "only one", false)
	if _, err := svc.ToggleTask("alien", task.PublicID); err != nil {
		t.Fatalf("ToggleTask returned error: %v", err)
	}

	fc.Advance(24 * time.Hour)
	snap, err := svc.Overview("alien")
	if err != nil {
		t.Fatalf("Overview returned error: %v", err)
	}

	if snap.User.PenaltyDeduction != 5 {
		t.Fatalf("expected penalty 5, got %d", snap.User.PenaltyDeduction)
	}
	if snap.User.FailedDays != 1 {
		t.Fatalf("expected 1 failed day, got %d", snap.User.FailedDays)
	}
	if snap.User.DailyCompleted != 0 {
		t.Fatalf("expected daily count reset, got %d", snap.User.DailyCompleted)
	}
	if snap.TaskPoints != 0 {
		t.Fatalf("expected task points 5-5=0, got %d", snap.TaskPoints)
	}
}

func TestDailyResetQuotaMetNoPenalty(t *testing.T) {
	svc, fc, cleanup := setupProgressionTest(t)
	defer cleanup()
	seedUser(t, svc, fc, "alien")

	for _, text := range []string{"first", "second"} {
		task := mustAddTask(t, svc, "alien", text, false)
		if _, err := svc.ToggleTask("alien", task.PublicID); err != nil {
			t.Fatalf("ToggleTask returned error: %v", err)
		}
	}

	fc.Advance(24 * time.Hour)
	snap, err := svc.Overview("alien")
	if err != nil {
		t.Fatalf("Overview returned error: %v", err)
	}

	if snap.User.PenaltyDeduction != 0 || snap.User.FailedDays != 0 {
		t.Fatalf("expected no penalty when quota met, got deduction=%d failed=%d",
			snap.User.PenaltyDeduction, snap.User.FailedDays)
	}
}

func TestDailyResetSkippedWhenPenaltyDisabled(t *testing.T) {
	svc, fc, cleanup := setupProgressionTest(t)
	defer cleanup()
	seedUser(t, svc, fc, "alien")

	if _, err := svc.SetPenaltyEnabled("alien", false); err != nil {
		t.Fatalf("SetPenaltyEnabled returned error: %v", err)
	}

	fc.Advance(24 * time.Hour)
	snap, err := svc.Overview("alien")
	if err != nil {
		t.Fatalf("Overview returned error: %v", err)
	}

	if snap.User.PenaltyDeduction != 0 || snap.User.FailedDays != 0 {
		t.Fatalf("expected no penalty while disabled, got deduction=%d failed=%d",
			snap.User.PenaltyDeduction, snap.User.FailedDays)
	}
	if snap.User.DailyCompleted != 0 {
		t.Fatal("expected daily count reset even with penalty disabled")
	}
}

func TestDailyResetIdempotent(t *testing.T) {
	svc, fc, cleanup := setupProgressionTest(t)
	defer cleanup()
	seedUser(t, svc, fc, "alien")

	fc.Advance(24 * time.Hour)
	first, err := svc.Overview("alien")
	if err != nil {
		t.Fatalf("Overview returned error: %v", err)
	}

	fc.Advance(2 * time.Hour)
	second, err := svc.Overview("alien")
	if err != nil {
		t.Fatalf("Overview returned error: %v", err)
	}

	if second.User.FailedDays != first.User.FailedDays {
		t.Fatalf("expected failed days unchanged, got %d then %d", first.User.FailedDays, second.User.FailedDays)
	}
	if second.User.PenaltyDeduction != first.User.PenaltyDeduction {
		t.Fatalf("expected deduction unchanged, got %d then %d", first.User.PenaltyDeduction, second.User.PenaltyDeduction)
	}
	if second.User.LastResetAt != first.User.LastResetAt {
		t.Fatalf("expected reset timestamp unchanged, got %d then %d", first.User.LastResetAt, second.User.LastResetAt)
	}
}

func TestCollectCheckinOncePerDay(t *testing.T) {
	svc, fc, cleanup := setupProgressionTest(t)
	defer cleanup()
	seedUser(t, svc, fc, "alien")

	snap, err := svc.CollectCheckin("alien")
	if err != nil {
		t.Fatalf("CollectCheckin returned error: %v", err)
	}
	if snap.User.CheckinPoints != 10 {
		t.Fatalf("expected 10 points, got %d", snap.User.CheckinPoints)
	}
	if snap.CanCollect {
		t.Fatal("expected collect to be spent for today")
	}

	if _, err := svc.CollectCheckin("alien"); !errors.Is(err, ErrAlreadyCollected) {
		t.Fatalf("expected ErrAlreadyCollected, got %v", err)
	}

	overview, err := svc.Overview("alien")
	if err != nil {
		t.Fatalf("Overview returned error: %v", err)
	}
	if overview.User.CheckinPoints != 10 {
		t.Fatalf("expected balance unchanged at 10, got %d", overview.User.CheckinPoints)
	}

	fc.Advance(24 * time.Hour)
	snap, err = svc.CollectCheckin("alien")
	if err != nil {
		t.Fatalf("CollectCheckin returned error: %v", err)
	}
	if snap.User.CheckinPoints != 20 {
		t.Fatalf("expected 20 points next day, got %d", snap.User.CheckinPoints)
	}
}

func TestDeleteCompletedTaskKeepsReward(t *testing.T) {
	svc, fc, cleanup := setupProgressionTest(t)
	defer cleanup()
	seedUser(t, svc, fc, "alien")
	task := mustAddTask(t, svc, "alien", "done and gone", false)

	if _, err := svc.ToggleTask("alien", task.PublicID); err != nil {
		t.Fatalf("ToggleTask returned error: %v", err)
	}

	snap, err := svc.DeleteTask("alien", task.PublicID)
	if err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}
	if len(snap.Tasks) != 0 {
		t.Fatalf("expected task removed, got %d", len(snap.Tasks))
	}
	if snap.User.ClaimedTaskPoints != 5 {
		t.Fatalf("expected reward to stand after delete, got %d", snap.User.ClaimedTaskPoints)
	}

	if _, err := svc.DeleteTask("alien", task.PublicID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound on second delete, got %v", err)
	}
}

func TestSetPermanentClearsCompletionState(t *testing.T) {
	svc, fc, cleanup := setupProgressionTest(t)
	defer cleanup()
	seedUser(t, svc, fc, "alien")
	task := mustAddTask(t, svc, "alien", "lockable", false)

	if _, err := svc.ToggleTask("alien", task.PublicID); err != nil {
		t.Fatalf("ToggleTask returned error: %v", err)
	}

	snap, err := svc.SetTaskPermanent("alien", task.PublicID, true)
	if err != nil {
		t.Fatalf("SetTaskPermanent returned error: %v", err)
	}

	got := snap.Tasks[0]
	if !got.Permanent {
		t.Fatal("expected permanent flag set")
	}
	if got.Completed || got.Claimed {
		t.Fatal("expected completion state cleared on mode switch")
	}
}

func TestSaveObjectiveAndQuota(t *testing.T) {
	svc, fc, cleanup := setupProgressionTest(t)
	defer cleanup()
	seedUser(t, svc, fc, "alien")

	if _, err := svc.SaveObjective("alien", "  "); !errors.Is(err, ErrEmptyObjective) {
		t.Fatalf("expected ErrEmptyObjective, got %v", err)
	}

	snap, err := svc.SaveObjective("alien", "Ship the tracker")
	if err != nil {
		t.Fatalf("SaveObjective returned error: %v", err)
	}
	if snap.User.Objective != "Ship the tracker" {
		t.Fatalf("unexpected objective: %s", snap.User.Objective)
	}

	if _, err := svc.SaveQuota("alien", 0); !errors.Is(err, ErrInvalidQuota) {
		t.Fatalf("expected ErrInvalidQuota, got %v", err)
	}

	snap, err = svc.SaveQuota("alien", 4)
	if err != nil {
		t.Fatalf("SaveQuota returned error: %v", err)
	}
	if snap.User.DailyQuota != 4 {
		t.Fatalf("expected quota 4, got %d", snap.User.DailyQuota)
	}
}

func TestRankAlwaysRecomputedFromCheckinPoints(t *testing.T) {
	svc, fc, cleanup := setupProgressionTest(t)
	defer cleanup()
	user := seedUser(t, svc, fc, "alien")

	// 直接改库模拟缓存列过期
	user.CheckinPoints = 600
	user.Rank = "totally stale"
	if err := svc.store.SaveUser(user); err != nil {
		t.Fatalf("failed to update user: %v", err)
	}

	snap, err := svc.Overview("alien")
	if err != nil {
		t.Fatalf("Overview returned error: %v", err)
	}
	if snap.User.Rank != "Newbie Coder 🌱" {
		t.Fatalf("expected rank recomputed from points, got %s", snap.User.Rank)
	}
}

func TestTaskPointsProjectionMayGoNegative(t *testing.T) {
	svc, fc, cleanup := setupProgressionTest(t)
	defer cleanup()
	seedUser(t, svc, fc, "alien")

	// 连续两天未达配额，无任何任务奖励
	fc.Advance(24 * time.Hour)
	if _, err := svc.Overview("alien"); err != nil {
		t.Fatalf("Overview returned error: %v", err)
	}
	fc.Advance(24 * time.Hour)
	snap, err := svc.Overview("alien")
	if err != nil {
		t.Fatalf("Overview returned error: %v", err)
	}

	if snap.TaskPoints != -10 {
		t.Fatalf("expected projection 0-10=-10, got %d", snap.TaskPoints)
	}
	if snap.User.ClaimedTaskPoints != 0 || snap.User.PenaltyDeduction != 10 {
		t.Fatalf("expected stored components non-negative, got claimed=%d deduction=%d",
			snap.User.ClaimedTaskPoints, snap.User.PenaltyDeduction)
	}
}

func TestTaskTextSanitized(t *testing.T) {
	svc, fc, cleanup := setupProgressionTest(t)
	defer cleanup()
	seedUser(t, svc, fc, "alien")

	task := mustAddTask(t, svc, "alien", `<b>bold</b> move`, false)
	if task.Text != "bold move" {
		t.Fatalf("expected markup stripped, got %q", task.Text)
	}

	if _, err := svc.AddTask("alien", "<script>alert(1)</script>", false); !errors.Is(err, ErrEmptyTaskText) {
		t.Fatalf("expected script-only text to be rejected, got %v", err)
	}
}
