package auth_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/auth"
	"github.com/frahmantamala/attendance-management/internal/core/capability"
	"golang.org/x/crypto/bcrypt"
)

var errStoreDown = errors.New("connection refused")

// MockRepository implements auth.Repository over an in-memory map keyed by employee number.
type MockRepository struct {
	mu         sync.Mutex
	accounts   map[string]*auth.Account
	shouldFail bool
	lastLogin  map[int64]time.Time
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		accounts:  make(map[string]*auth.Account),
		lastLogin: make(map[int64]time.Time),
	}
}

func (m *MockRepository) Add(id int64, employeeNumber, password string, roles ...string) *auth.Account {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	acct := &auth.Account{
		Profile: auth.Profile{
			ID:             id,
			EmployeeNumber: employeeNumber,
			Email:          employeeNumber + "@example.com",
			Name:           "User " + employeeNumber,
			Department:     &auth.DepartmentRef{ID: 1, Name: "General Affairs", Code: "GA"},
			Roles:          roles,
			Capabilities:   capability.Employee(),
		},
		PasswordHash: string(hash),
		IsActive:     true,
	}
	m.mu.Lock()
	m.accounts[employeeNumber] = acct
	m.mu.Unlock()
	return acct
}

func (m *MockRepository) FindActiveByEmployeeNumber(_ context.Context, employeeNumber string) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return nil, errStoreDown
	}
	acct, ok := m.accounts[employeeNumber]
	if !ok || !acct.IsActive {
		return nil, internal.ErrUserNotFound
	}
	cp := *acct
	return &cp, nil
}

func (m *MockRepository) FindActiveByID(_ context.Context, id int64) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.shouldFail {
		return nil, errStoreDown
	}
	for _, acct := range m.accounts {
		if acct.ID == id && acct.IsActive {
			cp := *acct
			return &cp, nil
		}
	}
	return nil, internal.ErrUserNotFound
}

func (m *MockRepository) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLogin[id] = at
	return nil
}

func (m *MockRepository) UpdatePassword(_ context.Context, id int64, passwordHash string, temporary bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, acct := range m.accounts {
		if acct.ID == id {
			acct.PasswordHash = passwordHash
			acct.IsPasswordTemporary = temporary
			return nil
		}
	}
	return internal.ErrUserNotFound
}

func (m *MockRepository) Deactivate(employeeNumber string) {
	m.mu.Lock()
	m.accounts[employeeNumber].IsActive = false
	m.mu.Unlock()
}

type auditEntry struct {
	success        bool
	employeeNumber string
	reason         string
}

// MockAudit records login outcomes.
type MockAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *MockAudit) LoginSucceeded(_ context.Context, p *auth.Profile, _, _ string) {
	a.mu.Lock()
	a.entries = append(a.entries, auditEntry{success: true, employeeNumber: p.EmployeeNumber})
	a.mu.Unlock()
}

func (a *MockAudit) LoginFailed(_ context.Context, employeeNumber, _, _, reason string) {
	a.mu.Lock()
	a.entries = append(a.entries, auditEntry{employeeNumber: employeeNumber, reason: reason})
	a.mu.Unlock()
}

func (a *MockAudit) Entries() []auditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]auditEntry(nil), a.entries...)
}

// FailingTracker returns an error from every call.
type FailingTracker struct{}

func (FailingTracker) Locked(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, errStoreDown
}

func (FailingTracker) RegisterFailure(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, errStoreDown
}

func (FailingTracker) Reset(context.Context, string) error {
	return errStoreDown
}
