package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/membership/internal/platform/cache"
	"github.com/odyssey-erp/membership/internal/shared"
)

// DefaultListingTTL is how long a cached listing page is served.
const DefaultListingTTL = time.Hour

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (User, error)
	EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error)
	List(ctx context.Context, req shared.PageRequest) ([]User, int, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, id int64) error
}

// CacheRecorder observes listing cache lookups ("hit", "miss", "error").
type CacheRecorder interface {
	ObserveCacheLookup(result string)
}

// ServiceConfig tunes the service. Zero values fall back to defaults.
type ServiceConfig struct {
	ListingTTL time.Duration
	BcryptCost int
	Logger     *slog.Logger
	Recorder   CacheRecorder
}

// Service handles user business logic.
type Service struct {
	repo      RepositoryPort
	cache     cache.Store
	ttl       time.Duration
	cost      int
	logger    *slog.Logger
	recorder  CacheRecorder
	validator *inputValidator
	loads     singleflight.Group
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, store cache.Store, cfg ServiceConfig) *Service {
	if cfg.ListingTTL <= 0 {
		cfg.ListingTTL = DefaultListingTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		cache:     store,
		ttl:       cfg.ListingTTL,
		cost:      cfg.BcryptCost,
		logger:    cfg.Logger,
		recorder:  cfg.Recorder,
		validator: newInputValidator(),
	}
}

// Register validates and stores a self-registered user.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate(ctx, in, in.Email, 0); err != nil {
		return err
	}
	_, err := s.insert(ctx, in.Name, in.Email, in.Password, *in.Age, in.MembershipStatus)
	return err
}

// Create validates and stores a user on behalf of an admin.
func (s *Service) Create(ctx context.Context, in CreateInput) (User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate(ctx, in, in.Email, 0); err != nil {
		return User{}, err
	}
	return s.insert(ctx, in.Name, in.Email, in.Password, *in.Age, in.MembershipStatus)
}

// Get returns a single user.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	if id <= 0 {
		return User{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// Exists reports whether a user with id is stored.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.Get(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update applies the allow-listed profile fields to an existing user. Password
// and roles are never touched.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (User, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := s.validate(ctx, in, in.Email, id); err != nil {
		return User{}, err
	}

	current.Name = in.Name
	current.Email = in.Email
	current.Age = *in.Age
	if in.MembershipStatus != nil {
		current.MembershipStatus = normalizeStatus(in.MembershipStatus)
	}

	updated, err := s.repo.Update(ctx, current)
	if errors.Is(err, shared.ErrDuplicateEmail) {
		return User{}, shared.NewValidationError("email", emailTakenMessage)
	}
	return updated, err
}

// Delete removes a user permanently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// List serves a page of users through the listing cache. Writes do not
// invalidate cached pages; they age out after the listing TTL.
func (s *Service) List(ctx context.Context, req shared.PageRequest) (shared.Page[User], error) {
	key := ListingCacheKey(req)
	if page, ok := s.cachedPage(ctx, key); ok {
		return page, nil
	}

	result := s.loads.DoChan(key, func() (any, error) {
		return s.loadPage(context.WithoutCancel(ctx), key, req)
	})
	select {
	case <-ctx.Done():
		return shared.Page[User]{}, ctx.Err()
	case res := <-result:
		if res.Err != nil {
			return shared.Page[User]{}, res.Err
		}
		return res.Val.(shared.Page[User]), nil
	}
}

// Warm loads a listing page from the store and overwrites its cache entry.
func (s *Service) Warm(ctx context.Context, req shared.PageRequest) (shared.Page[User], error) {
	return s.loadPage(ctx, ListingCacheKey(req), req)
}

// ListingCacheKey is the cache key for one page/per_page combination.
func ListingCacheKey(req shared.PageRequest) string {
	return fmt.Sprintf("users:index:page:%d:per_page:%d", req.Page, req.PerPage)
}

func (s *Service) cachedPage(ctx context.Context, key string) (shared.Page[User], bool) {
	if s.cache == nil {
		return shared.Page[User]{}, false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.observe("error")
		s.logger.Warn("listing cache read", slog.String("key", key), slog.Any("error", err))
		return shared.Page[User]{}, false
	}
	if !ok {
		s.observe("miss")
		return shared.Page[User]{}, false
	}
	var page shared.Page[User]
	if err := json.Unmarshal(raw, &page); err != nil {
		s.observe("error")
		s.logger.Warn("listing cache decode", slog.String("key", key), slog.Any("error", err))
		return shared.Page[User]{}, false
	}
	s.observe("hit")
	return page, true
}

func (s *Service) loadPage(ctx context.Context, key string, req shared.PageRequest) (shared.Page[User], error) {
	users, total, err := s.repo.List(ctx, req)
	if err != nil {
		return shared.Page[User]{}, err
	}
	page := shared.NewPage(req, users, total)
	if s.cache == nil {
		return page, nil
	}
	raw, err := json.Marshal(page)
	if err != nil {
		return shared.Page[User]{}, fmt.Errorf("users: encode listing: %w", err)
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.logger.Warn("listing cache write", slog.String("key", key), slog.Any("error", err))
	}
	return page, nil
}

func (s *Service) observe(result string) {
	if s.recorder != nil {
		s.recorder.ObserveCacheLookup(result)
	}
}

// validate runs the struct rules plus the email uniqueness rule. exceptID
// excludes the user being updated.
func (s *Service) validate(ctx context.Context, input any, email string, exceptID int64) error {
	verr, err := s.validator.check(input)
	if err != nil {
		return err
	}
	if !verr.Has("email") {
		taken, err := s.repo.EmailTaken(ctx, email, exceptID)
		if err != nil {
			return err
		}
		if taken {
			verr.Add("email", emailTakenMessage)
		}
	}
	if !verr.Empty() {
		return verr
	}
	return nil
}

func (s *Service) insert(ctx context.Context, name, email, password string, age int, status *string) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}
	created, err := s.repo.Create(ctx, User{
		Name:             name,
		Email:            email,
		PasswordHash:     string(hash),
		Age:              age,
		MembershipStatus: normalizeStatus(status),
	})
	if errors.Is(err, shared.ErrDuplicateEmail) {
		return User{}, shared.NewValidationError("email", emailTakenMessage)
	}
	return created, err
}
