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

// AccountRepositoryImpl implements AccountRepository interface
type AccountRepositoryImpl struct {
	*BaseRepository[models.Account, models.AccountFilter]
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &AccountRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Account, models.AccountFilter](db),
	}
}

// ByID retrieves an account by its identity id
func (r *AccountRepositoryImpl) ByID(ctx context.Context, id string) (*models.Account, error) {
	db := r.getDB(ctx)

	var account models.Account
	err := db.Where("id = ?", id).Last(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", id, err)
	}

	return &account, nil
}

// ByEmail retrieves an account by email address
func (r *AccountRepositoryImpl) ByEmail(ctx context.Context, email string) (*models.Account, error) {
	db := r.getDB(ctx)

	var account models.Account
	err := db.Where("email = ?", email).Last(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find account by email: %w", err)
	}

	return &account, nil
}

// ListByStatus retrieves accounts with the given status, most recent first
func (r *AccountRepositoryImpl) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.Account, error) {
	return r.ByFilter(ctx, models.AccountFilter{Status: utils.ToPtr(status)}, "created_at DESC", limit, offset)
}

// ListCorporate retrieves corporate accounts ordered by id for stable iteration
func (r *AccountRepositoryImpl) ListCorporate(ctx context.Context, limit, offset int) ([]*models.Account, error) {
	return r.ByFilter(ctx, models.AccountFilter{MembershipType: utils.ToPtr(models.MembershipTypeCorporate)}, "id ASC", limit, offset)
}

// Update persists changes to an existing account
func (r *AccountRepositoryImpl) Update(ctx context.Context, account *models.Account) error {
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

	account.UpdatedAt = utils.UTCNow()
	err = db.Save(account).Error
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}

	return nil
}

// UpdateStatus changes an account's lifecycle status
func (r *AccountRepositoryImpl) UpdateStatus(ctx context.Context, accountID, status string) error {
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

	result := db.Model(&models.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": utils.UTCNow(),
		})
	if result.Error != nil {
		err = fmt.Errorf("failed to update account status: %w", result.Error)
		return err
	}
	if result.RowsAffected == 0 {
		err = fmt.Errorf("account %s not found for status update", accountID)
		return err
	}

	return nil
}

// UpdateLogoURL sets the stored logo location for an organization account
func (r *AccountRepositoryImpl) UpdateLogoURL(ctx context.Context, accountID, logoURL string) error {
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

	result := db.Model(&models.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]any{
			"logo_url":   logoURL,
			"updated_at": utils.UTCNow(),
		})
	if result.Error != nil {
		err = fmt.Errorf("failed to update account logo: %w", result.Error)
		return err
	}

	return nil
}

// ByFilter retrieves accounts based on filter criteria
func (r *AccountRepositoryImpl) ByFilter(ctx context.Context, filter models.AccountFilter, orderBy string, limit, offset int) ([]*models.Account, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Account{}), filter)

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

	var accounts []*models.Account
	err := query.Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find accounts by filter: %w", err)
	}

	return accounts, nil
}

// Count returns the number of accounts matching the filter
func (r *AccountRepositoryImpl) Count(ctx context.Context, filter models.AccountFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Account{}), filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	return count, nil
}

// Exists checks if any account matching the filter exists
func (r *AccountRepositoryImpl) Exists(ctx context.Context, filter models.AccountFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *AccountRepositoryImpl) applyFilter(query *gorm.DB, filter models.AccountFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if filter.MembershipType != nil {
		// Legacy rows predate membership_type; empty means individual
		if *filter.MembershipType == models.MembershipTypeIndividual {
			query = query.Where("membership_type = ? OR membership_type = '' OR membership_type IS NULL", models.MembershipTypeIndividual)
		} else {
			query = query.Where("membership_type = ?", *filter.MembershipType)
		}
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.Email != nil {
		query = query.Where("email = ?", *filter.Email)
	}

	if filter.OrganizationName != nil {
		query = query.Where("organization_name = ?", *filter.OrganizationName)
	}

	if filter.OrganizationType != nil {
		query = query.Where("organization_type = ?", *filter.OrganizationType)
	}

	if filter.NameContains != nil {
		pattern := "%" + *filter.NameContains + "%"
		query = query.Where("personal_name ILIKE ? OR organization_name ILIKE ?", pattern, pattern)
	}

	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}

	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}

	return query
}
