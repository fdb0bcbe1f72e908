package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/odyssey-erp/membership/internal/shared"
)

// memoryRepository is an in-process RepositoryPort that enforces unique emails.
type memoryRepository struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[int64]User
	listCalls int
	listErr   error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{rows: map[int64]User{}}
}

func (m *memoryRepository) Get(_ context.Context, id int64) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.rows[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	user.PasswordHash = ""
	return user, nil
}

func (m *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.rows {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, shared.ErrNotFound
}

func (m *memoryRepository) EmailTaken(_ context.Context, email string, exceptID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, user := range m.rows {
		if id != exceptID && user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepository) List(_ context.Context, req shared.PageRequest) ([]User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := []User{}
	for i := req.Offset(); i < len(ids) && len(out) < req.PerPage; i++ {
		user := m.rows[ids[i]]
		user.PasswordHash = ""
		out = append(out, user)
	}
	return out, len(ids), nil
}

func (m *memoryRepository) Create(_ context.Context, user User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if existing.Email == user.Email {
			return User{}, shared.ErrDuplicateEmail
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.rows[user.ID] = user
	user.PasswordHash = ""
	return user, nil
}

func (m *memoryRepository) Update(_ context.Context, user User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.rows[user.ID]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	for id, existing := range m.rows {
		if id != user.ID && existing.Email == user.Email {
			return User{}, shared.ErrDuplicateEmail
		}
	}
	current.Name = user.Name
	current.Email = user.Email
	current.Age = user.Age
	current.MembershipStatus = user.MembershipStatus
	current.UpdatedAt = time.Now()
	m.rows[user.ID] = current
	current.PasswordHash = ""
	return current, nil
}

func (m *memoryRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memoryRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memoryRepository) lists() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}
