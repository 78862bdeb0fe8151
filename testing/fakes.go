// Package testing provides test utilities, fixtures, and in-memory fakes for
// exercising the membership back office without a database
package testing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fasehq/backoffice/models"
	"github.com/google/uuid"
)

// FakeAccountRepository is an in-memory AccountRepository. Set FailWith to
// make every call return that error.
type FakeAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	order    []string
	FailWith error
}

func NewFakeAccountRepository() *FakeAccountRepository {
	return &FakeAccountRepository{accounts: make(map[string]*models.Account)}
}

func (r *FakeAccountRepository) ByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	if a, ok := r.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *FakeAccountRepository) ByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	for _, id := range r.order {
		if r.accounts[id].Email == email {
			cp := *r.accounts[id]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *FakeAccountRepository) ListByStatus(_ context.Context, status string, limit, offset int) ([]*models.Account, error) {
	st := status
	return r.ByFilter(context.Background(), models.AccountFilter{Status: &st}, "", limit, offset)
}

func (r *FakeAccountRepository) ListCorporate(_ context.Context, limit, offset int) ([]*models.Account, error) {
	mt := models.MembershipTypeCorporate
	return r.ByFilter(context.Background(), models.AccountFilter{MembershipType: &mt}, "", limit, offset)
}

func (r *FakeAccountRepository) Save(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if _, ok := r.accounts[account.ID]; !ok {
		r.order = append(r.order, account.ID)
	}
	cp := *account
	r.accounts[account.ID] = &cp
	return nil
}

func (r *FakeAccountRepository) SaveBatch(ctx context.Context, accounts []*models.Account) error {
	for _, a := range accounts {
		if err := r.Save(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *FakeAccountRepository) Update(ctx context.Context, account *models.Account) error {
	return r.Save(ctx, account)
}

func (r *FakeAccountRepository) UpdateStatus(_ context.Context, accountID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	a, ok := r.accounts[accountID]
	if !ok {
		return fmt.Errorf("account %s not found", accountID)
	}
	a.Status = status
	return nil
}

func (r *FakeAccountRepository) UpdateLogoURL(_ context.Context, accountID, logoURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	a, ok := r.accounts[accountID]
	if !ok {
		return fmt.Errorf("account %s not found", accountID)
	}
	a.LogoURL = &logoURL
	return nil
}

func (r *FakeAccountRepository) ByFilter(_ context.Context, filter models.AccountFilter, _ string, limit, offset int) ([]*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	var matched []*models.Account
	for _, id := range r.order {
		a := r.accounts[id]
		if !accountMatches(a, filter) {
			continue
		}
		cp := *a
		matched = append(matched, &cp)
	}

	return paginate(matched, limit, offset), nil
}

func (r *FakeAccountRepository) Count(ctx context.Context, filter models.AccountFilter) (int64, error) {
	all, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func (r *FakeAccountRepository) Exists(ctx context.Context, filter models.AccountFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

func accountMatches(a *models.Account, f models.AccountFilter) bool {
	if f.ID != nil && a.ID != *f.ID {
		return false
	}
	if f.MembershipType != nil && a.MembershipType != *f.MembershipType {
		return false
	}
	if f.Status != nil && a.Status != *f.Status {
		return false
	}
	if f.Email != nil && a.Email != *f.Email {
		return false
	}
	if f.OrganizationName != nil {
		if a.OrganizationName == nil || *a.OrganizationName != *f.OrganizationName {
			return false
		}
	}
	if f.OrganizationType != nil {
		if a.OrganizationType == nil || *a.OrganizationType != *f.OrganizationType {
			return false
		}
	}
	if f.NameContains != nil {
		needle := strings.ToLower(*f.NameContains)
		var haystack string
		if a.OrganizationName != nil {
			haystack += strings.ToLower(*a.OrganizationName) + " "
		}
		if a.PersonalName != nil {
			haystack += strings.ToLower(*a.PersonalName)
		}
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	if f.CreatedAfter != nil && a.CreatedAt.Before(*f.CreatedAfter) {
		return false
	}
	if f.CreatedBefore != nil && a.CreatedAt.After(*f.CreatedBefore) {
		return false
	}
	return true
}

// FakeOrganizationMemberRepository is an in-memory OrganizationMemberRepository.
// ByMemberID mirrors the production lookup: results ordered by organization id
// with the owning account attached when the account store knows it.
type FakeOrganizationMemberRepository struct {
	mu       sync.Mutex
	members  map[string]*models.OrganizationMember // keyed by orgID + "/" + memberID
	accounts *FakeAccountRepository
	FailWith error
}

func NewFakeOrganizationMemberRepository(accounts *FakeAccountRepository) *FakeOrganizationMemberRepository {
	return &FakeOrganizationMemberRepository{
		members:  make(map[string]*models.OrganizationMember),
		accounts: accounts,
	}
}

func memberKey(organizationID, memberID string) string {
	return organizationID + "/" + memberID
}

func (r *FakeOrganizationMemberRepository) ByID(_ context.Context, id string) (*models.OrganizationMember, error) {
	memberships, err := r.ByMemberID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return nil, nil
	}
	return memberships[0], nil
}

func (r *FakeOrganizationMemberRepository) ByOrganizationAndID(_ context.Context, organizationID, memberID string) (*models.OrganizationMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	if m, ok := r.members[memberKey(organizationID, memberID)]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *FakeOrganizationMemberRepository) ByMemberID(_ context.Context, memberID string) ([]*models.OrganizationMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	var memberships []*models.OrganizationMember
	for _, m := range r.members {
		if m.ID != memberID {
			continue
		}
		cp := *m
		if r.accounts != nil {
			if org, ok := r.accounts.accounts[cp.OrganizationID]; ok {
				orgCp := *org
				cp.Organization = &orgCp
			}
		}
		memberships = append(memberships, &cp)
	}

	sort.Slice(memberships, func(i, j int) bool {
		return memberships[i].OrganizationID < memberships[j].OrganizationID
	})
	return memberships, nil
}

func (r *FakeOrganizationMemberRepository) ListByOrganization(_ context.Context, organizationID string) ([]*models.OrganizationMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	var members []*models.OrganizationMember
	for _, m := range r.members {
		if m.OrganizationID != organizationID {
			continue
		}
		cp := *m
		members = append(members, &cp)
	}

	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

func (r *FakeOrganizationMemberRepository) Save(_ context.Context, member *models.OrganizationMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	cp := *member
	cp.Organization = nil
	r.members[memberKey(member.OrganizationID, member.ID)] = &cp
	return nil
}

func (r *FakeOrganizationMemberRepository) SaveBatch(ctx context.Context, members []*models.OrganizationMember) error {
	for _, m := range members {
		if err := r.Save(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *FakeOrganizationMemberRepository) Update(ctx context.Context, member *models.OrganizationMember) error {
	return r.Save(ctx, member)
}

func (r *FakeOrganizationMemberRepository) Delete(_ context.Context, organizationID, memberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	key := memberKey(organizationID, memberID)
	if _, ok := r.members[key]; !ok {
		return fmt.Errorf("member %s not found in organization %s", memberID, organizationID)
	}
	delete(r.members, key)
	return nil
}

func (r *FakeOrganizationMemberRepository) ListDuplicateMemberIDs(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	counts := make(map[string]int)
	for _, m := range r.members {
		counts[m.ID]++
	}

	var duplicates []string
	for id, n := range counts {
		if n > 1 {
			duplicates = append(duplicates, id)
		}
	}
	sort.Strings(duplicates)
	return duplicates, nil
}

func (r *FakeOrganizationMemberRepository) ByFilter(_ context.Context, filter models.OrganizationMemberFilter, _ string, limit, offset int) ([]*models.OrganizationMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	var matched []*models.OrganizationMember
	for _, m := range r.members {
		if !memberFilterMatches(m, filter) {
			continue
		}
		cp := *m
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].OrganizationID != matched[j].OrganizationID {
			return matched[i].OrganizationID < matched[j].OrganizationID
		}
		return matched[i].ID < matched[j].ID
	})
	return paginate(matched, limit, offset), nil
}

func (r *FakeOrganizationMemberRepository) Count(ctx context.Context, filter models.OrganizationMemberFilter) (int64, error) {
	all, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func (r *FakeOrganizationMemberRepository) Exists(ctx context.Context, filter models.OrganizationMemberFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

func memberFilterMatches(m *models.OrganizationMember, f models.OrganizationMemberFilter) bool {
	if f.ID != nil && m.ID != *f.ID {
		return false
	}
	if f.OrganizationID != nil && m.OrganizationID != *f.OrganizationID {
		return false
	}
	if f.Email != nil && m.Email != *f.Email {
		return false
	}
	if f.IsPrimaryContact != nil && m.IsPrimary() != *f.IsPrimaryContact {
		return false
	}
	if f.IsAccountAdministrator != nil && m.IsAdministrator() != *f.IsAccountAdministrator {
		return false
	}
	return true
}

// FakeAdminRepository is an in-memory AdminRepository.
type FakeAdminRepository struct {
	mu       sync.Mutex
	admins   map[uint]*models.Admin
	nextID   uint
	FailWith error
}

func NewFakeAdminRepository() *FakeAdminRepository {
	return &FakeAdminRepository{admins: make(map[uint]*models.Admin), nextID: 1}
}

func (r *FakeAdminRepository) ByID(_ context.Context, id uint) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	if a, ok := r.admins[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *FakeAdminRepository) ByUUID(_ context.Context, id uuid.UUID) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	for _, a := range r.admins {
		if a.UUID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *FakeAdminRepository) ByUsername(_ context.Context, username string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	for _, a := range r.admins {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *FakeAdminRepository) UpdateLastLogin(_ context.Context, adminID uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if a, ok := r.admins[adminID]; ok {
		a.LastLoginAt = &at
	}
	return nil
}

func (r *FakeAdminRepository) Save(_ context.Context, admin *models.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if admin.ID == 0 {
		admin.ID = r.nextID
		r.nextID++
	}
	cp := *admin
	r.admins[admin.ID] = &cp
	return nil
}

func (r *FakeAdminRepository) SaveBatch(ctx context.Context, admins []*models.Admin) error {
	for _, a := range admins {
		if err := r.Save(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *FakeAdminRepository) ByFilter(_ context.Context, _ models.AdminFilter, _ string, _, _ int) ([]*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	var all []*models.Admin
	for _, a := range r.admins {
		cp := *a
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (r *FakeAdminRepository) Count(ctx context.Context, filter models.AdminFilter) (int64, error) {
	all, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func (r *FakeAdminRepository) Exists(ctx context.Context, filter models.AdminFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

// FakeTaskRepository is an in-memory TaskRepository.
type FakeTaskRepository struct {
	mu       sync.Mutex
	tasks    map[uint]*models.Task
	nextID   uint
	FailWith error
}

func NewFakeTaskRepository() *FakeTaskRepository {
	return &FakeTaskRepository{tasks: make(map[uint]*models.Task), nextID: 1}
}

func (r *FakeTaskRepository) ByID(_ context.Context, id uint) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	if t, ok := r.tasks[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *FakeTaskRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*models.Task, error) {
	acc := accountID
	return r.ByFilter(ctx, models.TaskFilter{AccountID: &acc}, "", limit, offset)
}

func (r *FakeTaskRepository) Save(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if task.ID == 0 {
		task.ID = r.nextID
		r.nextID++
	}
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *FakeTaskRepository) SaveBatch(ctx context.Context, tasks []*models.Task) error {
	for _, t := range tasks {
		if err := r.Save(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (r *FakeTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.Save(ctx, task)
}

func (r *FakeTaskRepository) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if _, ok := r.tasks[id]; !ok {
		return fmt.Errorf("task %d not found", id)
	}
	delete(r.tasks, id)
	return nil
}

func (r *FakeTaskRepository) ByFilter(_ context.Context, filter models.TaskFilter, _ string, limit, offset int) ([]*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	var matched []*models.Task
	for _, t := range r.tasks {
		if !taskFilterMatches(t, filter) {
			continue
		}
		cp := *t
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return paginate(matched, limit, offset), nil
}

func (r *FakeTaskRepository) Count(ctx context.Context, filter models.TaskFilter) (int64, error) {
	all, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func (r *FakeTaskRepository) Exists(ctx context.Context, filter models.TaskFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

func taskFilterMatches(t *models.Task, f models.TaskFilter) bool {
	if f.ID != nil && t.ID != *f.ID {
		return false
	}
	if f.Kind != nil && t.Kind != *f.Kind {
		return false
	}
	if f.AccountID != nil && t.AccountID != *f.AccountID {
		return false
	}
	if f.MemberID != nil {
		if t.MemberID == nil || *t.MemberID != *f.MemberID {
			return false
		}
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.AdminID != nil {
		if t.AdminID == nil || *t.AdminID != *f.AdminID {
			return false
		}
	}
	return true
}

// FakeAuditLogRepository is an in-memory AuditLogRepository.
type FakeAuditLogRepository struct {
	mu       sync.Mutex
	entries  []*models.AuditLog
	nextID   uint
	FailWith error
}

func NewFakeAuditLogRepository() *FakeAuditLogRepository {
	return &FakeAuditLogRepository{nextID: 1}
}

func (r *FakeAuditLogRepository) ByID(_ context.Context, id uint) (*models.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	for _, e := range r.entries {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *FakeAuditLogRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*models.AuditLog, error) {
	acc := accountID
	return r.ByFilter(ctx, models.AuditLogFilter{AccountID: &acc}, "", limit, offset)
}

func (r *FakeAuditLogRepository) ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error) {
	act := action
	return r.ByFilter(ctx, models.AuditLogFilter{Action: &act}, "", limit, offset)
}

func (r *FakeAuditLogRepository) ListIntegrityEvents(_ context.Context, limit, offset int) ([]*models.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	var matched []*models.AuditLog
	for _, e := range r.entries {
		if !e.IsIntegrityEvent() {
			continue
		}
		cp := *e
		matched = append(matched, &cp)
	}
	return paginate(matched, limit, offset), nil
}

func (r *FakeAuditLogRepository) Save(_ context.Context, entry *models.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return r.FailWith
	}
	if entry.ID == 0 {
		entry.ID = r.nextID
		r.nextID++
	}
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *FakeAuditLogRepository) SaveBatch(ctx context.Context, entries []*models.AuditLog) error {
	for _, e := range entries {
		if err := r.Save(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *FakeAuditLogRepository) ByFilter(_ context.Context, filter models.AuditLogFilter, _ string, limit, offset int) ([]*models.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailWith != nil {
		return nil, r.FailWith
	}

	var matched []*models.AuditLog
	for _, e := range r.entries {
		if !auditFilterMatches(e, filter) {
			continue
		}
		cp := *e
		matched = append(matched, &cp)
	}
	return paginate(matched, limit, offset), nil
}

func (r *FakeAuditLogRepository) Count(ctx context.Context, filter models.AuditLogFilter) (int64, error) {
	all, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(all)), nil
}

func (r *FakeAuditLogRepository) Exists(ctx context.Context, filter models.AuditLogFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	return count > 0, err
}

// Entries returns a snapshot of everything recorded so far.
func (r *FakeAuditLogRepository) Entries() []*models.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.AuditLog, 0, len(r.entries))
	for _, e := range r.entries {
		cp := *e
		out = append(out, &cp)
	}
	return out
}

func auditFilterMatches(e *models.AuditLog, f models.AuditLogFilter) bool {
	if f.ID != nil && e.ID != *f.ID {
		return false
	}
	if f.AccountID != nil {
		if e.AccountID == nil || *e.AccountID != *f.AccountID {
			return false
		}
	}
	if f.MemberID != nil {
		if e.MemberID == nil || *e.MemberID != *f.MemberID {
			return false
		}
	}
	if f.AdminID != nil {
		if e.AdminID == nil || *e.AdminID != *f.AdminID {
			return false
		}
	}
	if f.Action != nil && e.Action != *f.Action {
		return false
	}
	if f.Success != nil {
		if e.Success == nil || *e.Success != *f.Success {
			return false
		}
	}
	return true
}

func paginate[T any](items []*T, limit, offset int) []*T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
