package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/tagsentry/tagsentry/internal/domain/account"
	"github.com/tagsentry/tagsentry/internal/domain/policy"
	"github.com/tagsentry/tagsentry/internal/domain/resource"
	"github.com/tagsentry/tagsentry/internal/domain/scan"
	"github.com/tagsentry/tagsentry/internal/domain/scope"
	"github.com/tagsentry/tagsentry/internal/domain/violation"
	"github.com/tagsentry/tagsentry/internal/pkg/errors"
)

// MockAccountRepository is an in-memory account.Repository
type MockAccountRepository struct {
	Accounts     map[int64]*account.Account
	RegionScopes map[int64]map[string]*account.RegionScope
	NextID       int64
	GetError     error
	UpdateError  error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts:     make(map[int64]*account.Account),
		RegionScopes: make(map[int64]map[string]*account.RegionScope),
		NextID:       1,
	}
}

func (m *MockAccountRepository) Create(ctx context.Context, acct *account.Account) (int64, error) {
	acct.ID = m.NextID
	m.NextID++
	m.Accounts[acct.ID] = acct
	return acct.ID, nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	acct, ok := m.Accounts[id]
	if !ok {
		return nil, errors.NotFound("Account")
	}
	return acct, nil
}

func (m *MockAccountRepository) Update(ctx context.Context, acct *account.Account) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.Accounts[acct.ID]; !ok {
		return errors.NotFound("Account")
	}
	m.Accounts[acct.ID] = acct
	return nil
}

func (m *MockAccountRepository) UpdateLastScanned(ctx context.Context, id int64, at time.Time) error {
	acct, ok := m.Accounts[id]
	if !ok {
		return errors.NotFound("Account")
	}
	acct.LastScannedAt = &at
	return nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, ownerID, id int64) error {
	acct, ok := m.Accounts[id]
	if !ok || acct.OwnerID != ownerID {
		return errors.NotFound("Account")
	}
	delete(m.Accounts, id)
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context, ownerID int64, filter account.Filter) ([]*account.Account, error) {
	var result []*account.Account
	for _, acct := range m.Accounts {
		if acct.OwnerID != ownerID {
			continue
		}
		if filter.Provider != "" && acct.Provider != filter.Provider {
			continue
		}
		if filter.Status != "" && acct.Status != filter.Status {
			continue
		}
		result = append(result, acct)
	}
	sortAccounts(result)
	return result, nil
}

func (m *MockAccountRepository) ListByStatus(ctx context.Context, status string) ([]*account.Account, error) {
	var result []*account.Account
	for _, acct := range m.Accounts {
		if acct.Status == status {
			result = append(result, acct)
		}
	}
	sortAccounts(result)
	return result, nil
}

func (m *MockAccountRepository) UpsertRegionScope(ctx context.Context, s *account.RegionScope) error {
	scopes, ok := m.RegionScopes[s.AccountID]
	if !ok {
		scopes = make(map[string]*account.RegionScope)
		m.RegionScopes[s.AccountID] = scopes
	}
	if existing, ok := scopes[s.Region]; ok {
		existing.Enabled = s.Enabled
		return nil
	}
	scopes[s.Region] = s
	return nil
}

func (m *MockAccountRepository) EnsureRegionScope(ctx context.Context, s *account.RegionScope) (bool, error) {
	scopes, ok := m.RegionScopes[s.AccountID]
	if !ok {
		scopes = make(map[string]*account.RegionScope)
		m.RegionScopes[s.AccountID] = scopes
	}
	if _, ok := scopes[s.Region]; ok {
		return false, nil
	}
	scopes[s.Region] = s
	return true, nil
}

func (m *MockAccountRepository) ListRegionScopes(ctx context.Context, accountID int64) ([]*account.RegionScope, error) {
	var result []*account.RegionScope
	for _, s := range m.RegionScopes[accountID] {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Region < result[j].Region })
	return result, nil
}

func (m *MockAccountRepository) EnabledRegions(ctx context.Context, accountID int64) ([]string, error) {
	var regions []string
	for _, s := range m.RegionScopes[accountID] {
		if s.Enabled {
			regions = append(regions, s.Region)
		}
	}
	sort.Strings(regions)
	return regions, nil
}

func sortAccounts(accounts []*account.Account) {
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
}

// MockPolicyRepository is an in-memory policy.Repository
type MockPolicyRepository struct {
	Policies map[int64]*policy.Policy
	NextID   int64
	GetError error
}

func NewMockPolicyRepository() *MockPolicyRepository {
	return &MockPolicyRepository{
		Policies: make(map[int64]*policy.Policy),
		NextID:   1,
	}
}

func (m *MockPolicyRepository) Create(ctx context.Context, p *policy.Policy) (int64, error) {
	p.ID = m.NextID
	m.NextID++
	m.Policies[p.ID] = p
	return p.ID, nil
}

func (m *MockPolicyRepository) GetByID(ctx context.Context, ownerID, id int64) (*policy.Policy, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	p, ok := m.Policies[id]
	if !ok || p.OwnerID != ownerID {
		return nil, errors.NotFound("Policy")
	}
	return p, nil
}

func (m *MockPolicyRepository) Update(ctx context.Context, p *policy.Policy) error {
	if _, ok := m.Policies[p.ID]; !ok {
		return errors.NotFound("Policy")
	}
	m.Policies[p.ID] = p
	return nil
}

func (m *MockPolicyRepository) Delete(ctx context.Context, ownerID, id int64) error {
	p, ok := m.Policies[id]
	if !ok || p.OwnerID != ownerID {
		return errors.NotFound("Policy")
	}
	delete(m.Policies, id)
	return nil
}

func (m *MockPolicyRepository) List(ctx context.Context, ownerID int64) ([]*policy.Policy, error) {
	var result []*policy.Policy
	for _, p := range m.Policies {
		if p.OwnerID == ownerID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockPolicyRepository) ListEnabled(ctx context.Context, ownerID int64) ([]*policy.Policy, error) {
	all, _ := m.List(ctx, ownerID)
	var result []*policy.Policy
	for _, p := range all {
		if p.Enabled {
			result = append(result, p)
		}
	}
	return result, nil
}

// MockResourceRepository is an in-memory resource.Repository. DeleteCascade
// removes the resource's violations when wired to a violation mock.
type MockResourceRepository struct {
	Resources   map[int64]*resource.Resource
	NextID      int64
	Violations  *MockViolationRepository
	UpsertError error
	DeleteError error
	Deleted     []int64
}

func NewMockResourceRepository() *MockResourceRepository {
	return &MockResourceRepository{
		Resources: make(map[int64]*resource.Resource),
		NextID:    1,
	}
}

func (m *MockResourceRepository) GetByARN(ctx context.Context, accountID int64, arn string) (*resource.Resource, error) {
	for _, res := range m.Resources {
		if res.AccountID == accountID && res.ARN == arn {
			return res, nil
		}
	}
	return nil, errors.NotFound("Resource")
}

func (m *MockResourceRepository) GetByID(ctx context.Context, id int64) (*resource.Resource, error) {
	res, ok := m.Resources[id]
	if !ok {
		return nil, errors.NotFound("Resource")
	}
	return res, nil
}

func (m *MockResourceRepository) Upsert(ctx context.Context, res *resource.Resource) error {
	if m.UpsertError != nil {
		return m.UpsertError
	}
	for _, existing := range m.Resources {
		if existing.ARN == res.ARN {
			res.ID = existing.ID
			res.DiscoveredAt = existing.DiscoveredAt
			m.Resources[existing.ID] = res
			return nil
		}
	}
	res.ID = m.NextID
	m.NextID++
	if res.DiscoveredAt.IsZero() {
		res.DiscoveredAt = time.Now()
	}
	m.Resources[res.ID] = res
	return nil
}

func (m *MockResourceRepository) ListByAccount(ctx context.Context, accountID int64) ([]*resource.Resource, error) {
	var result []*resource.Resource
	for _, res := range m.Resources {
		if res.AccountID == accountID {
			result = append(result, res)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockResourceRepository) List(ctx context.Context, ownerID int64, filter resource.Filter, limit, offset int) ([]*resource.Resource, int64, error) {
	var result []*resource.Resource
	for _, res := range m.Resources {
		if filter.AccountID != 0 && res.AccountID != filter.AccountID {
			continue
		}
		if filter.Type != "" && res.Type != filter.Type {
			continue
		}
		if filter.Region != "" && res.Region != filter.Region {
			continue
		}
		result = append(result, res)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, int64(len(result)), nil
}

func (m *MockResourceRepository) DeleteCascade(ctx context.Context, id int64) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	if _, ok := m.Resources[id]; !ok {
		return errors.NotFound("Resource")
	}
	delete(m.Resources, id)
	m.Deleted = append(m.Deleted, id)
	if m.Violations != nil {
		m.Violations.deleteByResource(id)
	}
	return nil
}

// MockViolationRepository is an in-memory violation.Repository
type MockViolationRepository struct {
	Violations  map[int64]*violation.Violation
	NextID      int64
	CreateError error
	UpdateError error
}

func NewMockViolationRepository() *MockViolationRepository {
	return &MockViolationRepository{
		Violations: make(map[int64]*violation.Violation),
		NextID:     1,
	}
}

func (m *MockViolationRepository) Create(ctx context.Context, v *violation.Violation) (int64, error) {
	if m.CreateError != nil {
		return 0, m.CreateError
	}
	v.ID = m.NextID
	m.NextID++
	if v.DetectedAt.IsZero() {
		v.DetectedAt = time.Now()
	}
	m.Violations[v.ID] = v
	return v.ID, nil
}

func (m *MockViolationRepository) GetByID(ctx context.Context, id int64) (*violation.Violation, error) {
	v, ok := m.Violations[id]
	if !ok {
		return nil, errors.NotFound("Violation")
	}
	return v, nil
}

func (m *MockViolationRepository) GetByResourceAndPolicy(ctx context.Context, resourceID, policyID int64) (*violation.Violation, error) {
	for _, v := range m.Violations {
		if v.ResourceID == resourceID && v.PolicyID == policyID {
			return v, nil
		}
	}
	return nil, errors.NotFound("Violation")
}

func (m *MockViolationRepository) Update(ctx context.Context, v *violation.Violation) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.Violations[v.ID]; !ok {
		return errors.NotFound("Violation")
	}
	m.Violations[v.ID] = v
	return nil
}

func (m *MockViolationRepository) List(ctx context.Context, ownerID int64, filter violation.Filter, limit, offset int) ([]*violation.Violation, int64, error) {
	var result []*violation.Violation
	for _, v := range m.Violations {
		if filter.AccountID != 0 && v.AccountID != filter.AccountID {
			continue
		}
		if filter.ResourceID != 0 && v.ResourceID != filter.ResourceID {
			continue
		}
		if filter.PolicyID != 0 && v.PolicyID != filter.PolicyID {
			continue
		}
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		if filter.Severity != "" && v.Severity != filter.Severity {
			continue
		}
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, int64(len(result)), nil
}

func (m *MockViolationRepository) ListByResource(ctx context.Context, resourceID int64) ([]*violation.Violation, error) {
	var result []*violation.Violation
	for _, v := range m.Violations {
		if v.ResourceID == resourceID {
			result = append(result, v)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockViolationRepository) CountByStatus(ctx context.Context, accountID int64) (map[string]int, error) {
	counts := make(map[string]int)
	for _, v := range m.Violations {
		if v.AccountID == accountID {
			counts[v.Status]++
		}
	}
	return counts, nil
}

func (m *MockViolationRepository) deleteByResource(resourceID int64) {
	for id, v := range m.Violations {
		if v.ResourceID == resourceID {
			delete(m.Violations, id)
		}
	}
}

// MockScanJobRepository is an in-memory scan.Repository. UpdateError fails
// every Update, or only updates moving the job to UpdateErrorOnStatus when
// that is set.
type MockScanJobRepository struct {
	Jobs                map[string]*scan.Job
	CreateError         error
	UpdateError         error
	UpdateErrorOnStatus string
}

func NewMockScanJobRepository() *MockScanJobRepository {
	return &MockScanJobRepository{Jobs: make(map[string]*scan.Job)}
}

func (m *MockScanJobRepository) Create(ctx context.Context, job *scan.Job) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	m.Jobs[job.ID] = job
	return nil
}

func (m *MockScanJobRepository) GetByID(ctx context.Context, id string) (*scan.Job, error) {
	job, ok := m.Jobs[id]
	if !ok {
		return nil, errors.NotFound("Scan job")
	}
	return job, nil
}

func (m *MockScanJobRepository) Update(ctx context.Context, job *scan.Job) error {
	if m.UpdateError != nil && (m.UpdateErrorOnStatus == "" || job.Status == m.UpdateErrorOnStatus) {
		return m.UpdateError
	}
	if _, ok := m.Jobs[job.ID]; !ok {
		return errors.NotFound("Scan job")
	}
	m.Jobs[job.ID] = job
	return nil
}

func (m *MockScanJobRepository) FindActiveByAccount(ctx context.Context, accountID int64) (*scan.Job, error) {
	for _, job := range m.Jobs {
		if job.AccountID == accountID && !job.IsTerminal() {
			return job, nil
		}
	}
	return nil, errors.NotFound("Scan job")
}

func (m *MockScanJobRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*scan.Job, int64, error) {
	var result []*scan.Job
	for _, job := range m.Jobs {
		if job.AccountID == accountID {
			result = append(result, job)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, int64(len(result)), nil
}

// MockScopeRepository is an in-memory scope.Repository
type MockScopeRepository struct {
	Scopes map[string]*scope.ResourceTypeScope
}

func NewMockScopeRepository() *MockScopeRepository {
	return &MockScopeRepository{Scopes: make(map[string]*scope.ResourceTypeScope)}
}

func (m *MockScopeRepository) ListResourceTypeScopes(ctx context.Context) ([]*scope.ResourceTypeScope, error) {
	var result []*scope.ResourceTypeScope
	for _, s := range m.Scopes {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ResourceType < result[j].ResourceType })
	return result, nil
}

func (m *MockScopeRepository) EnabledResourceTypes(ctx context.Context) ([]string, error) {
	var types []string
	for _, s := range m.Scopes {
		if s.Enabled {
			types = append(types, s.ResourceType)
		}
	}
	sort.Strings(types)
	return types, nil
}

func (m *MockScopeRepository) SetResourceTypeEnabled(ctx context.Context, resourceType string, enabled bool) error {
	m.Scopes[resourceType] = &scope.ResourceTypeScope{
		ResourceType: resourceType,
		Enabled:      enabled,
		UpdatedAt:    time.Now(),
	}
	return nil
}
