package models

import (
	"encoding/json"
	"time"

	"freight-app/types"
)

const (
	TaskTypeCustomers      = "customers"
	TaskTypeContainerItems = "container_items"
)

const (
	TaskStatusPending    = "pending"
	TaskStatusProcessing = "processing"
	TaskStatusCompleted  = "completed"
	TaskStatusFailed     = "failed"
)

// RowError points at one bad row of an import file.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportTask is a bulk create job. Small batches run inline, large ones run
// in the background and the client polls by id until the task is terminal.
type ImportTask struct {
	ID             types.SnowflakeID `json:"id" gorm:"primaryKey"`
	Type           string            `json:"type"`
	Status         string            `json:"status" gorm:"index;default:'pending'"`
	TotalRows      int               `json:"total_rows"`
	ProcessedRows  int               `json:"processed_rows"`
	CreatedCount   int               `json:"created_count"`
	SkippedCount   int               `json:"skipped_count"`
	FailedCount    int               `json:"failed_count"`
	UnmatchedCount int               `json:"unmatched_count"`
	ContainerID    *uint             `json:"container_id"`
	RowErrors      string            `json:"-"`
	ErrorText      string            `json:"error,omitempty"`
	StartedAt      *time.Time        `json:"started_at"`
	FinishedAt     *time.Time        `json:"finished_at"`
	CreatedBy      int               `json:"-"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Terminal reports whether the task has finished. Terminal tasks never change
// again.
func (t *ImportTask) Terminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// Progress returns completion as a whole percentage.
func (t *ImportTask) Progress() int {
	if t.TotalRows <= 0 {
		return 0
	}
	p := t.ProcessedRows * 100 / t.TotalRows
	if p > 100 {
		p = 100
	}
	return p
}

// SetRowErrors serializes errs into the RowErrors column.
func (t *ImportTask) SetRowErrors(errs []RowError) {
	if len(errs) == 0 {
		t.RowErrors = ""
		return
	}
	b, err := json.Marshal(errs)
	if err != nil {
		return
	}
	t.RowErrors = string(b)
}

// GetRowErrors decodes the RowErrors column.
func (t *ImportTask) GetRowErrors() []RowError {
	if t.RowErrors == "" {
		return nil
	}
	var errs []RowError
	if err := json.Unmarshal([]byte(t.RowErrors), &errs); err != nil {
		return nil
	}
	return errs
}
