package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pashudrishti/pashu-sahayak/internal/domain/users"
)

type memoryUsers struct {
	byEmail map[string]*users.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: make(map[string]*users.User)}
}

func (m *memoryUsers) Create(_ context.Context, u *users.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return users.ErrEmailTaken
	}
	m.byEmail[u.Email] = u
	return nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*users.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, users.ErrNotFound
	}
	return u, nil
}

func (m *memoryUsers) FindByID(_ context.Context, id users.UserID) (*users.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, users.ErrNotFound
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newService(ttl time.Duration, now time.Time) (*Service, *memoryUsers) {
	repo := newMemoryUsers()
	return &Service{
		Users:      repo,
		SigningKey: []byte("test-signing-key"),
		TokenTTL:   ttl,
		Clock:      fixedClock{t: now},
	}, repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newService(time.Hour, time.Now())

	u, err := svc.Register(context.Background(), "Ravi", "Ravi@Example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ravi@example.com", u.Email)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	token, logged, err := svc.Login(context.Background(), "ravi@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)

	ownerID, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, string(u.ID), ownerID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newService(time.Hour, time.Now())

	_, err := svc.Register(context.Background(), "Ravi", "ravi@example.com", "secret1")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "Other", "ravi@example.com", "secret2")
	assert.ErrorIs(t, err, users.ErrEmailTaken)
}

func TestRegister_RejectsWeakInput(t *testing.T) {
	svc, _ := newService(time.Hour, time.Now())

	_, err := svc.Register(context.Background(), "", "ravi@example.com", "secret1")
	assert.Error(t, err)
	_, err = svc.Register(context.Background(), "Ravi", "ravi@example.com", "123")
	assert.Error(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newService(time.Hour, time.Now())
	_, err := svc.Register(context.Background(), "Ravi", "ravi@example.com", "secret1")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "ravi@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _ := newService(time.Hour, time.Now())

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyToken_Expired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	svc, _ := newService(time.Hour, past)

	_, err := svc.Register(context.Background(), "Ravi", "ravi@example.com", "secret1")
	require.NoError(t, err)
	token, _, err := svc.Login(context.Background(), "ravi@example.com", "secret1")
	require.NoError(t, err)

	// Issued two hours ago with a one hour TTL.
	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_Garbage(t *testing.T) {
	svc, _ := newService(time.Hour, time.Now())

	_, err := svc.VerifyToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_WrongKey(t *testing.T) {
	svc, _ := newService(time.Hour, time.Now())
	_, err := svc.Register(context.Background(), "Ravi", "ravi@example.com", "secret1")
	require.NoError(t, err)
	token, _, err := svc.Login(context.Background(), "ravi@example.com", "secret1")
	require.NoError(t, err)

	other := &Service{SigningKey: []byte("different-key"), TokenTTL: time.Hour, Clock: fixedClock{t: time.Now()}}
	_, err = other.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
