package main

import (
	"fmt"
	"log"
	"time"

	"freight-app/config"
	"freight-app/database"
	"freight-app/models"
	"freight-app/repositories"
	"freight-app/services"

	"gorm.io/gorm"
)

// The processor is the housekeeping sidecar of the API server. It reaps
// import tasks whose worker died, retires expired sessions, and mails the
// ops team a daily digest of shipping marks nobody has resolved.

func main() {
	config.LoadConfig()

	db, err := database.GetDBConnection(config.DBName)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}

	importService := services.NewImportService(db)
	notifyService := services.NewNotifyService(db, services.NewSMTPMailer())
	taskService := services.NewTaskService(db, importService, notifyService)
	goodsRepository := repositories.NewGoodsRepository(db)

	interval := time.Duration(config.ProcessorIntervalMins) * time.Minute
	fmt.Println("🚀 Processor running, tick every", interval)

	lastDigestDay := ""

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runOnce(db, taskService, notifyService, goodsRepository, &lastDigestDay)
	for range ticker.C {
		runOnce(db, taskService, notifyService, goodsRepository, &lastDigestDay)
	}
}

func runOnce(db *gorm.DB, tasks *services.TaskService, notify *services.NotifyService,
	repo *repositories.GoodsRepository, lastDigestDay *string) {

	reapStaleTasks(tasks)
	retireExpiredSessions(db)
	sendDailyDigest(notify, repo, lastDigestDay)
}

func reapStaleTasks(tasks *services.TaskService) {
	staleAfter := time.Duration(config.TaskStaleMinutes) * time.Minute
	reaped, err := tasks.FailStaleTasks(staleAfter)
	if err != nil {
		log.Println("❌ Failed to reap stale tasks:", err)
		return
	}
	if reaped > 0 {
		fmt.Printf("⚠️ Marked %d stale import task(s) as failed\n", reaped)
	}
}

func retireExpiredSessions(db *gorm.DB) {
	res := db.Model(&models.UserSession{}).
		Where("is_active = ? AND expires_at < ?", true, time.Now()).
		Update("is_active", false)
	if res.Error != nil {
		log.Println("❌ Failed to retire expired sessions:", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		fmt.Printf("🔒 Retired %d expired session(s)\n", res.RowsAffected)
	}
}

// sendDailyDigest mails ops at most once per calendar day, and only when
// unmatched marks have been sitting for more than a day.
func sendDailyDigest(notify *services.NotifyService, repo *repositories.GoodsRepository, lastDigestDay *string) {
	today := time.Now().Format("2006-01-02")
	if *lastDigestDay == today {
		return
	}

	stats, err := repo.GetUnmatchedStats(time.Now().Add(-24 * time.Hour))
	if err != nil {
		log.Println("❌ Failed to collect unmatched stats:", err)
		return
	}
	if stats.GroupCount == 0 {
		*lastDigestDay = today
		return
	}

	notify.NotifyOpsDigest(stats.GroupCount, stats.ItemCount, stats.Oldest)
	*lastDigestDay = today
	fmt.Printf("📧 Ops digest sent: %d group(s), %d item(s) unresolved\n",
		stats.GroupCount, stats.ItemCount)
}
