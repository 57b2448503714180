package user

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/doimih/mini-crm/internal/audit"
	"github.com/doimih/mini-crm/internal/config"
)

// memRepo is an in-memory Repository for service tests. It mirrors the
// store's contract: unique emails, targeted field updates, token lookups
// gated on both hash and expiry.
type memRepo struct {
	mu    sync.Mutex
	users map[string]*User
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]*User{}}
}

func (r *memRepo) add(u *User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
}

func (r *memRepo) get(id string) *User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp
	}
	return nil
}

func (r *memRepo) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return ErrEmailExists
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) FindByID(_ context.Context, id string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (r *memRepo) List(_ context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memRepo) FindByVerificationToken(_ context.Context, tokenHash string, now time.Time) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.EmailVerificationToken != nil && *u.EmailVerificationToken == tokenHash &&
			u.EmailVerificationTokenExpires != nil && u.EmailVerificationTokenExpires.After(now) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) FindByResetToken(_ context.Context, tokenHash string, now time.Time) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PasswordResetToken != nil && *u.PasswordResetToken == tokenHash &&
			u.PasswordResetTokenExpires != nil && u.PasswordResetTokenExpires.After(now) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) SetVerificationToken(_ context.Context, id, tokenHash string, expires time.Time) error {
	return r.mutate(id, func(u *User) {
		u.EmailVerificationToken = &tokenHash
		u.EmailVerificationTokenExpires = &expires
	})
}

func (r *memRepo) MarkEmailVerified(_ context.Context, id string, at time.Time) error {
	return r.mutate(id, func(u *User) {
		u.EmailVerifiedAt = &at
		u.EmailVerificationToken = nil
		u.EmailVerificationTokenExpires = nil
	})
}

func (r *memRepo) SetResetToken(_ context.Context, id, tokenHash string, expires time.Time) error {
	return r.mutate(id, func(u *User) {
		u.PasswordResetToken = &tokenHash
		u.PasswordResetTokenExpires = &expires
	})
}

func (r *memRepo) UpdatePassword(_ context.Context, id, newPasswordHash string) error {
	return r.mutate(id, func(u *User) {
		u.PasswordHash = newPasswordHash
		u.PasswordResetToken = nil
		u.PasswordResetTokenExpires = nil
	})
}

func (r *memRepo) SetLastLogin(_ context.Context, id string, at time.Time) error {
	return r.mutate(id, func(u *User) { u.LastLoginAt = &at })
}

func (r *memRepo) SetLastLogout(_ context.Context, id string, at time.Time) error {
	return r.mutate(id, func(u *User) { u.LastLogoutAt = &at })
}

func (r *memRepo) UpdateFields(_ context.Context, id string, fields map[string]any) (*User, error) {
	err := r.mutate(id, func(u *User) {
		for k, v := range fields {
			switch k {
			case "email":
				u.Email = v.(string)
			case "role":
				u.Role = v.(Role)
			case "status":
				u.Status = v.(Status)
			case "password_hash":
				u.PasswordHash = v.(string)
			case "email_verified_at":
				if v == nil {
					u.EmailVerifiedAt = nil
				} else {
					at := v.(time.Time)
					u.EmailVerifiedAt = &at
				}
			case "email_verification_token":
				u.EmailVerificationToken = nil
			case "email_verification_token_expires":
				u.EmailVerificationTokenExpires = nil
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(context.Background(), id)
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memRepo) mutate(id string, fn func(u *User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now()
	return nil
}

// sentMail records one dispatched message.
type sentMail struct {
	To     string
	Token  string
	UserID string
	Kind   string
}

// fakeMailer is a Notification Dispatcher double.
type fakeMailer struct {
	mu         sync.Mutex
	configured bool
	sendErr    error
	sent       []sentMail
}

func (m *fakeMailer) IsConfigured(context.Context) bool { return m.configured }

func (m *fakeMailer) SendVerificationEmail(_ context.Context, to, token, userID string) error {
	return m.record("verification", to, token, userID)
}

func (m *fakeMailer) SendPasswordResetEmail(_ context.Context, to, token, userID string) error {
	return m.record("reset", to, token, userID)
}

func (m *fakeMailer) record(kind, to, token, userID string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Token: token, UserID: userID, Kind: kind})
	return nil
}

func (m *fakeMailer) lastSent() *sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return nil
	}
	cp := m.sent[len(m.sent)-1]
	return &cp
}

// fakeAudit records audit entries in memory.
type fakeAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (a *fakeAudit) Record(_ context.Context, e audit.Entry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *fakeAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.Action)
	}
	return out
}

const testJWTSecret = "test-secret"

type testEnv struct {
	repo   *memRepo
	mailer *fakeMailer
	audit  *fakeAudit
	svc    Service
	cfg    *config.Config
}

func newTestEnv() *testEnv {
	repo := newMemRepo()
	mailer := &fakeMailer{configured: true}
	recorder := &fakeAudit{}
	cfg := &config.Config{
		JWTSecret: testJWTSecret,
		Superadmin: config.SuperadminConfig{
			Email: "admin@example.com",
		},
	}
	svc := NewService(&Config{
		Repo:   repo,
		Logger: slog.New(slog.DiscardHandler),
		Config: cfg,
		Mailer: mailer,
		Audit:  recorder,
	})
	return &testEnv{repo: repo, mailer: mailer, audit: recorder, svc: svc, cfg: cfg}
}

// seedUser inserts a user directly into the store, bypassing registration.
func (e *testEnv) seedUser(id, email, password string, mutators ...func(*User)) *User {
	hash, err := hashPassword(password)
	if err != nil {
		panic(err)
	}
	now := time.Now()
	u := &User{
		ID:              id,
		Email:           email,
		PasswordHash:    hash,
		Role:            RoleUser,
		Status:          StatusActive,
		EmailVerifiedAt: &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, m := range mutators {
		m(u)
	}
	e.repo.add(u)
	return u
}
