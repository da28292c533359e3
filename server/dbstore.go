// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-json-experiment/json"
	"gorm.io/gorm"

	"github.com/go-a2a/searchagent/a2a"
)

// TaskRecord is the database row backing one task. The protocol object is
// stored as a JSON document; the ID, context ID and state are lifted into
// columns so tasks can be queried without decoding.
type TaskRecord struct {
	ID        string `gorm:"primaryKey;size:36"`
	ContextID string `gorm:"size:36;not null;index"`
	State     string `gorm:"size:32;not null"`
	Data      []byte `gorm:"type:json;not null"`
}

// TableName returns the table backing TaskRecord.
func (TaskRecord) TableName() string {
	return "tasks"
}

// DatabaseTaskStore is a TaskStore backed by a GORM-managed database.
// It is interchangeable with InMemoryTaskStore for deployments that need
// tasks to survive a restart.
type DatabaseTaskStore struct {
	db *gorm.DB
}

var _ TaskStore = (*DatabaseTaskStore)(nil)

// NewDatabaseTaskStore creates a store on the given database connection and
// migrates the tasks table.
func NewDatabaseTaskStore(db *gorm.DB) (*DatabaseTaskStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	if err := db.AutoMigrate(&TaskRecord{}); err != nil {
		return nil, fmt.Errorf("migrating tasks table: %w", err)
	}
	return &DatabaseTaskStore{db: db}, nil
}

// Save upserts the task row.
func (s *DatabaseTaskStore) Save(ctx context.Context, task *a2a.Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encoding task %s: %w", task.ID, err)
	}

	record := &TaskRecord{
		ID:        task.ID,
		ContextID: task.ContextID,
		State:     string(task.Status.State),
		Data:      data,
	}
	if err := s.db.WithContext(ctx).Save(record).Error; err != nil {
		return fmt.Errorf("saving task %s: %w", task.ID, err)
	}
	return nil
}

// Get retrieves and decodes a task by ID.
func (s *DatabaseTaskStore) Get(ctx context.Context, taskID string) (*a2a.Task, error) {
	if taskID == "" {
		return nil, fmt.Errorf("task ID cannot be empty")
	}

	var record TaskRecord
	if err := s.db.WithContext(ctx).Where("id = ?", taskID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, a2a.ErrTaskNotFound
		}
		return nil, fmt.Errorf("loading task %s: %w", taskID, err)
	}

	var task a2a.Task
	if err := json.Unmarshal(record.Data, &task); err != nil {
		return nil, fmt.Errorf("decoding task %s: %w", taskID, err)
	}
	return &task, nil
}

// Delete removes the task row. Deleting a missing task is not an error.
func (s *DatabaseTaskStore) Delete(ctx context.Context, taskID string) error {
	if taskID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	if err := s.db.WithContext(ctx).Where("id = ?", taskID).Delete(&TaskRecord{}).Error; err != nil {
		return fmt.Errorf("deleting task %s: %w", taskID, err)
	}
	return nil
}

// ListByContext returns all tasks sharing a context, oldest row first.
func (s *DatabaseTaskStore) ListByContext(ctx context.Context, contextID string) ([]*a2a.Task, error) {
	if contextID == "" {
		return nil, fmt.Errorf("context ID cannot be empty")
	}

	var records []TaskRecord
	if err := s.db.WithContext(ctx).Where("context_id = ?", contextID).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("listing tasks for context %s: %w", contextID, err)
	}

	tasks := make([]*a2a.Task, len(records))
	for i, record := range records {
		var task a2a.Task
		if err := json.Unmarshal(record.Data, &task); err != nil {
			return nil, fmt.Errorf("decoding task %s: %w", record.ID, err)
		}
		tasks[i] = &task
	}
	return tasks, nil
}
