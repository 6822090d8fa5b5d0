package services

import (
	"fmt"
	"log"
	"time"

	"freight-app/controllers/idgen"
	"freight-app/models"
	"freight-app/types"

	"gorm.io/gorm"
)

// progressEvery is how many rows pass between processed_rows writes, so a
// polling client sees movement without a DB write per row.
const progressEvery = 10

type TaskService struct {
	DB     *gorm.DB
	Import *ImportService
	Notify *NotifyService
}

func NewTaskService(db *gorm.DB, importSvc *ImportService, notify *NotifyService) *TaskService {
	return &TaskService{DB: db, Import: importSvc, Notify: notify}
}

// NewTask inserts a pending task row. The id goes back to the client, which
// polls it until the task is terminal.
func (s *TaskService) NewTask(taskType string, totalRows int, containerID *uint, userID int) (*models.ImportTask, error) {
	task := &models.ImportTask{
		ID:          types.SnowflakeID(idgen.GenerateID()),
		Type:        taskType,
		Status:      models.TaskStatusPending,
		TotalRows:   totalRows,
		ContainerID: containerID,
		CreatedBy:   userID,
	}
	if err := s.DB.Create(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) GetTask(id int64) (*models.ImportTask, error) {
	var task models.ImportTask
	if err := s.DB.First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// RunCustomerImport executes a customer batch in the background.
func (s *TaskService) RunCustomerImport(task *models.ImportTask, rows []CustomerRow, userID int) {
	go s.run(task, func(progress func(int)) (ImportOutcome, error) {
		return s.Import.CreateCustomers(rows, userID, progress)
	})
}

// RunManifestImport executes a container manifest batch in the background.
func (s *TaskService) RunManifestImport(task *models.ImportTask, container *models.CargoContainer, rows []ManifestRow, userID int) {
	go s.run(task, func(progress func(int)) (ImportOutcome, error) {
		return s.Import.CreateItems(container, rows, userID, progress)
	})
}

func (s *TaskService) run(task *models.ImportTask, exec func(progress func(int)) (ImportOutcome, error)) {
	defer func() {
		if r := recover(); r != nil {
			log.Println("❌ Import task panicked:", r)
			s.finish(task, ImportOutcome{}, fmt.Errorf("import crashed: %v", r))
		}
	}()

	now := time.Now()
	s.DB.Model(&models.ImportTask{}).
		Where("id = ? AND status = ?", task.ID, models.TaskStatusPending).
		Updates(map[string]interface{}{
			"status":     models.TaskStatusProcessing,
			"started_at": now,
		})

	lastSaved := 0
	progress := func(done int) {
		if done-lastSaved < progressEvery && done != task.TotalRows {
			return
		}
		lastSaved = done
		s.DB.Model(&models.ImportTask{}).
			Where("id = ?", task.ID).
			Update("processed_rows", done)
	}

	outcome, err := exec(progress)
	s.finish(task, outcome, err)
}

// finish moves the task to its terminal state. The status guard keeps a
// terminal row immutable even if the stale reaper got there first.
func (s *TaskService) finish(task *models.ImportTask, outcome ImportOutcome, err error) {
	now := time.Now()

	task.SetRowErrors(outcome.RowErrors)
	updates := map[string]interface{}{
		"processed_rows":  outcome.Created + outcome.Skipped + outcome.Failed,
		"created_count":   outcome.Created,
		"skipped_count":   outcome.Skipped,
		"failed_count":    outcome.Failed,
		"unmatched_count": outcome.Unmatched,
		"row_errors":      task.RowErrors,
		"finished_at":     now,
	}
	if err != nil {
		updates["status"] = models.TaskStatusFailed
		updates["error_text"] = err.Error()
	} else {
		updates["status"] = models.TaskStatusCompleted
	}

	res := s.DB.Model(&models.ImportTask{}).
		Where("id = ? AND status IN ?", task.ID,
			[]string{models.TaskStatusPending, models.TaskStatusProcessing}).
		Updates(updates)
	if res.Error != nil {
		log.Println("❌ Failed to finish import task:", res.Error)
		return
	}

	var fresh models.ImportTask
	if dbErr := s.DB.First(&fresh, "id = ?", task.ID).Error; dbErr == nil {
		if s.Notify != nil {
			s.Notify.NotifyImportReport(&fresh)
		}
	}
}

// FailStaleTasks flags tasks stuck in pending or processing beyond the given
// age, typically after a crashed worker. The processor calls this on a timer.
func (s *TaskService) FailStaleTasks(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res := s.DB.Model(&models.ImportTask{}).
		Where("status IN ? AND updated_at < ?",
			[]string{models.TaskStatusPending, models.TaskStatusProcessing}, cutoff).
		Updates(map[string]interface{}{
			"status":      models.TaskStatusFailed,
			"error_text":  "task abandoned: no progress for too long",
			"finished_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}
