// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fasehq/backoffice/models"
	"github.com/fasehq/backoffice/utils"
	"gorm.io/gorm"
)

// TaskRepositoryImpl implements TaskRepository interface
type TaskRepositoryImpl struct {
	*BaseRepository[models.Task, models.TaskFilter]
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &TaskRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Task, models.TaskFilter](db),
	}
}

// ByID retrieves a task by its ID
func (r *TaskRepositoryImpl) ByID(ctx context.Context, id uint) (*models.Task, error) {
	db := r.getDB(ctx)

	var task models.Task
	err := db.Last(&task, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find task by ID %d: %w", id, err)
	}

	return &task, nil
}

// ListByAccount retrieves tasks and notes attached to an account, newest first
func (r *TaskRepositoryImpl) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*models.Task, error) {
	return r.ByFilter(ctx, models.TaskFilter{AccountID: utils.ToPtr(accountID)}, "created_at DESC", limit, offset)
}

// Update persists changes to an existing task
func (r *TaskRepositoryImpl) Update(ctx context.Context, task *models.Task) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	task.UpdatedAt = utils.UTCNow()
	err = db.Save(task).Error
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// Delete removes a task
func (r *TaskRepositoryImpl) Delete(ctx context.Context, id uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	result := db.Delete(&models.Task{}, id)
	if result.Error != nil {
		err = fmt.Errorf("failed to delete task %d: %w", id, result.Error)
		return err
	}
	if result.RowsAffected == 0 {
		err = fmt.Errorf("task %d not found", id)
		return err
	}

	return nil
}

// ByFilter retrieves tasks based on filter criteria
func (r *TaskRepositoryImpl) ByFilter(ctx context.Context, filter models.TaskFilter, orderBy string, limit, offset int) ([]*models.Task, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Task{}), filter)

	// Apply ordering (default to id DESC)
	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	// Apply pagination
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var tasks []*models.Task
	err := query.Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks by filter: %w", err)
	}

	return tasks, nil
}

// Count returns the number of tasks matching the filter
func (r *TaskRepositoryImpl) Count(ctx context.Context, filter models.TaskFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Task{}), filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	return count, nil
}

// Exists checks if any task matching the filter exists
func (r *TaskRepositoryImpl) Exists(ctx context.Context, filter models.TaskFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *TaskRepositoryImpl) applyFilter(query *gorm.DB, filter models.TaskFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}

	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}

	if filter.MemberID != nil {
		query = query.Where("member_id = ?", *filter.MemberID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.AdminID != nil {
		query = query.Where("admin_id = ?", *filter.AdminID)
	}

	if filter.DueBefore != nil {
		query = query.Where("due_at <= ?", *filter.DueBefore)
	}

	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}

	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}

	return query
}
