package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/negocehub/marketplace-api/internal/core/domain"
	"github.com/negocehub/marketplace-api/internal/core/ports"
)

type stubUserRepo struct {
	users  map[string]*domain.User // keyed by id
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = "user_" + strconv.Itoa(r.nextID)
	r.users[copy.ID] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, id string, fields ports.UserUpdate) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if fields.Name != nil {
		u.Name = *fields.Name
	}
	if fields.Email != nil {
		u.Email = *fields.Email
	}
	return cloneUser(u), nil
}

func parseToken(t *testing.T, token, secret string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	return claims
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour, zerolog.Nop())

	result, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "Alice", Email: "a@x.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected token, got empty")
	}
	if result.User.IsSeller {
		t.Fatalf("new accounts must not be sellers")
	}
	if result.User.PasswordHash == "secret123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(result.User.PasswordHash), []byte("secret123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	claims := parseToken(t, result.Token, "secret")
	if claims["sub"] != result.User.ID {
		t.Fatalf("token subject %v, want %s", claims["sub"], result.User.ID)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour, zerolog.Nop())

	cases := []ports.RegisterInput{
		{Name: "", Email: "a@x.com", Password: "pass"},
		{Name: "Alice", Email: "", Password: "pass"},
		{Name: "Alice", Email: "a@x.com", Password: ""},
	}
	for _, input := range cases {
		if _, err := svc.Register(context.Background(), input); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", input, err)
		}
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour, zerolog.Nop())

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Name: "Bob", Email: "bob@x.com", Password: "pass12"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), ports.RegisterInput{Name: "Bobby", Email: "bob@x.com", Password: "other1"}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("duplicate register created an identity: %d users", len(repo.users))
	}
}

func TestAuthService_Hashing_SaltedPerCall(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour, zerolog.Nop())

	r1, err := svc.Register(context.Background(), ports.RegisterInput{Name: "A", Email: "a@x.com", Password: "samepass"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	r2, err := svc.Register(context.Background(), ports.RegisterInput{Name: "B", Email: "b@x.com", Password: "samepass"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if r1.User.PasswordHash == r2.User.PasswordHash {
		t.Fatalf("expected different hashes for the same password")
	}
	for _, hash := range []string{r1.User.PasswordHash, r2.User.PasswordHash} {
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("samepass")); err != nil {
			t.Fatalf("hash does not verify: %v", err)
		}
	}
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour, zerolog.Nop())

	reg, err := svc.Register(context.Background(), ports.RegisterInput{Name: "Alice", Email: "a@x.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.Login(context.Background(), "a@x.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}

	login, err := svc.Login(context.Background(), "a@x.com", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	claims := parseToken(t, login.Token, "secret")
	if claims["sub"] != reg.User.ID {
		t.Fatalf("login token subject %v, want registration id %s", claims["sub"], reg.User.ID)
	}
}

func TestAuthService_Login_GenericError(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour, zerolog.Nop())

	_, _ = svc.Register(context.Background(), ports.RegisterInput{Name: "Dave", Email: "dave@x.com", Password: "goodpass"})

	_, unknownErr := svc.Login(context.Background(), "ghost@x.com", "whatever")
	_, wrongErr := svc.Login(context.Background(), "dave@x.com", "badpass")

	// Unknown email and wrong password must be indistinguishable.
	if !errors.Is(unknownErr, domain.ErrInvalidCredentials) || !errors.Is(wrongErr, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v and %v", unknownErr, wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("error messages differ: %q vs %q", unknownErr, wrongErr)
	}
}

func TestAuthService_TokenExpiry(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", 2*time.Hour, zerolog.Nop())

	result, err := svc.Register(context.Background(), ports.RegisterInput{Name: "Eve", Email: "eve@x.com", Password: "pass12"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	claims := parseToken(t, result.Token, "secret")
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		t.Fatalf("missing exp claim: %v", err)
	}
	want := time.Now().Add(2 * time.Hour)
	if exp.Time.Before(want.Add(-time.Minute)) || exp.Time.After(want.Add(time.Minute)) {
		t.Fatalf("exp %v not near %v", exp.Time, want)
	}
}
