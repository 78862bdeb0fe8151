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

// OrganizationMemberRepositoryImpl implements OrganizationMemberRepository interface
type OrganizationMemberRepositoryImpl struct {
	*BaseRepository[models.OrganizationMember, models.OrganizationMemberFilter]
}

// NewOrganizationMemberRepository creates a new member sub-record repository
func NewOrganizationMemberRepository(db *gorm.DB) OrganizationMemberRepository {
	return &OrganizationMemberRepositoryImpl{
		BaseRepository: NewBaseRepository[models.OrganizationMember, models.OrganizationMemberFilter](db),
	}
}

// ByID retrieves a member sub-record by its identity id. With a healthy
// dataset the id appears under at most one organization; callers that care
// about duplicates use ByMemberID instead.
func (r *OrganizationMemberRepositoryImpl) ByID(ctx context.Context, id string) (*models.OrganizationMember, error) {
	db := r.getDB(ctx)

	var member models.OrganizationMember
	err := db.Where("id = ?", id).Last(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find member by ID %s: %w", id, err)
	}

	return &member, nil
}

// ByOrganizationAndID retrieves a member sub-record scoped to one organization
func (r *OrganizationMemberRepositoryImpl) ByOrganizationAndID(ctx context.Context, organizationID, memberID string) (*models.OrganizationMember, error) {
	db := r.getDB(ctx)

	var member models.OrganizationMember
	err := db.Where("organization_id = ? AND id = ?", organizationID, memberID).
		Last(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find member %s in organization %s: %w", memberID, organizationID, err)
	}

	return &member, nil
}

// ByMemberID retrieves every sub-record carrying the given identity id, with
// the owning account preloaded. Ordering by organization_id keeps resolution
// deterministic when the id appears under more than one organization.
func (r *OrganizationMemberRepositoryImpl) ByMemberID(ctx context.Context, memberID string) ([]*models.OrganizationMember, error) {
	db := r.getDB(ctx)

	var members []*models.OrganizationMember
	err := db.Preload("Organization").
		Where("id = ?", memberID).
		Order("organization_id ASC").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find memberships for %s: %w", memberID, err)
	}

	return members, nil
}

// ListByOrganization retrieves the full roster of one organization
func (r *OrganizationMemberRepositoryImpl) ListByOrganization(ctx context.Context, organizationID string) ([]*models.OrganizationMember, error) {
	db := r.getDB(ctx)

	var members []*models.OrganizationMember
	err := db.Where("organization_id = ?", organizationID).
		Order("personal_name ASC").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list members of organization %s: %w", organizationID, err)
	}

	return members, nil
}

// Update persists changes to an existing member sub-record
func (r *OrganizationMemberRepositoryImpl) Update(ctx context.Context, member *models.OrganizationMember) error {
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

	member.UpdatedAt = utils.UTCNow()
	err = db.Save(member).Error
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}

	return nil
}

// Delete removes a member sub-record from one organization's roster. Scoping
// the delete by organization keeps a duplicated id's other records intact.
func (r *OrganizationMemberRepositoryImpl) Delete(ctx context.Context, organizationID, memberID string) error {
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

	result := db.Where("organization_id = ? AND id = ?", organizationID, memberID).
		Delete(&models.OrganizationMember{})
	if result.Error != nil {
		err = fmt.Errorf("failed to delete member %s: %w", memberID, result.Error)
		return err
	}
	if result.RowsAffected == 0 {
		err = fmt.Errorf("member %s not found in organization %s", memberID, organizationID)
		return err
	}

	return nil
}

// ListDuplicateMemberIDs returns identity ids present under more than one
// organization. Used by the consistency sweep.
func (r *OrganizationMemberRepositoryImpl) ListDuplicateMemberIDs(ctx context.Context) ([]string, error) {
	db := r.getDB(ctx)

	var ids []string
	err := db.Model(&models.OrganizationMember{}).
		Select("id").
		Group("id").
		Having("COUNT(DISTINCT organization_id) > 1").
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list duplicate member ids: %w", err)
	}

	return ids, nil
}

// ByFilter retrieves member sub-records based on filter criteria
func (r *OrganizationMemberRepositoryImpl) ByFilter(ctx context.Context, filter models.OrganizationMemberFilter, orderBy string, limit, offset int) ([]*models.OrganizationMember, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.OrganizationMember{}), filter)

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

	var members []*models.OrganizationMember
	err := query.Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find members by filter: %w", err)
	}

	return members, nil
}

// Count returns the number of member sub-records matching the filter
func (r *OrganizationMemberRepositoryImpl) Count(ctx context.Context, filter models.OrganizationMemberFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.OrganizationMember{}), filter)

	var count int64
	err := query.Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}

	return count, nil
}

// Exists checks if any member sub-record matching the filter exists
func (r *OrganizationMemberRepositoryImpl) Exists(ctx context.Context, filter models.OrganizationMemberFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *OrganizationMemberRepositoryImpl) applyFilter(query *gorm.DB, filter models.OrganizationMemberFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}

	if filter.OrganizationID != nil {
		query = query.Where("organization_id = ?", *filter.OrganizationID)
	}

	if filter.Email != nil {
		query = query.Where("email = ?", *filter.Email)
	}

	if filter.IsPrimaryContact != nil {
		query = query.Where("is_primary_contact = ?", *filter.IsPrimaryContact)
	}

	if filter.IsAccountAdministrator != nil {
		query = query.Where("is_account_administrator = ?", *filter.IsAccountAdministrator)
	}

	if filter.JoinedAfter != nil {
		query = query.Where("joined_at >= ?", *filter.JoinedAfter)
	}

	if filter.JoinedBefore != nil {
		query = query.Where("joined_at <= ?", *filter.JoinedBefore)
	}

	return query
}
