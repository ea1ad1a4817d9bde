package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/faildaily/faildaily-api/internal/domain/user"
	"github.com/faildaily/faildaily-api/internal/pkg/jwt"
	"github.com/faildaily/faildaily-api/internal/pkg/password"
)

func init() {
	password.Cost = 4
}

type fakeUserRepo struct {
	byEmail map[string]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*user.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return user.ErrEmailAlreadyExists
	}
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return f.byEmail[email], nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role user.Role) error {
	for _, u := range f.byEmail {
		if u.ID == id {
			u.Role = role
			return nil
		}
	}
	return user.ErrUserNotFound
}

func newTestService() (*Service, *fakeUserRepo, *jwt.Service) {
	repo := newFakeUserRepo()
	jwtSvc := jwt.NewService("secret", time.Hour)
	return NewService(repo, jwtSvc), repo, jwtSvc
}

func TestRegisterNormalizesEmailAndIssuesUserToken(t *testing.T) {
	svc, repo, jwtSvc := newTestService()

	resp, err := svc.Register(context.Background(), &RegisterRequest{
		Email:       "  Alice@Example.COM ",
		Password:    "password123",
		DisplayName: "Alice",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, ok := repo.byEmail["alice@example.com"]; !ok {
		t.Fatal("expected normalized email to be stored")
	}
	if resp.User.Role != string(user.RoleUser) {
		t.Fatalf("expected default role user, got %s", resp.User.Role)
	}

	claims, err := jwtSvc.ValidateAccessToken(resp.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.UserID != resp.User.ID || claims.Role != "user" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	req := func() *RegisterRequest {
		return &RegisterRequest{Email: "bob@example.com", Password: "password123", DisplayName: "Bob"}
	}
	if _, err := svc.Register(context.Background(), req()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), req()); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Register(context.Background(), &RegisterRequest{Email: "c@example.com", Password: "password123", DisplayName: "Cee"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(context.Background(), &LoginRequest{Email: "C@example.com", Password: "password123"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Login(context.Background(), &LoginRequest{Email: "c@example.com", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), &LoginRequest{Email: "nobody@example.com", Password: "password123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterHandlerValidation(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"unknown field", `{"email":"a@b.co","password":"password123","display_name":"Al","role":"admin"}`, http.StatusBadRequest},
		{"invalid email", `{"email":"nope","password":"password123","display_name":"Al"}`, http.StatusUnprocessableEntity},
		{"ok", `{"email":"d@example.com","password":"password123","display_name":"Dee"}`, http.StatusCreated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(tc.body))
			rr := httptest.NewRecorder()
			h.Register(rr, req)
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d body=%s", tc.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestLoginHandlerWrongPasswordReturns401(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	if _, err := svc.Register(context.Background(), &RegisterRequest{Email: "e@example.com", Password: "password123", DisplayName: "Eve"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	body, _ := json.Marshal(LoginRequest{Email: "e@example.com", Password: "nope-nope"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestSetRole(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	res, err := svc.Register(ctx, &RegisterRequest{Email: "mod@example.com", Password: "password123", DisplayName: "  Future   Mod "})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.User.DisplayName != "Future Mod" {
		t.Fatalf("display name must be normalized, got %q", res.User.DisplayName)
	}
	admin := uuid.New()

	u, err := svc.SetRole(ctx, admin, res.User.ID, "moderator")
	if err != nil {
		t.Fatalf("set role: %v", err)
	}
	if repo.byEmail["mod@example.com"].Role != user.RoleModerator || u.Role != string(user.RoleModerator) {
		t.Fatalf("role not updated: %+v", u)
	}

	if _, err := svc.SetRole(ctx, admin, res.User.ID, "owner"); !errors.Is(err, user.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if _, err := svc.SetRole(ctx, admin, uuid.New(), "user"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.SetRole(ctx, admin, admin, "user"); !errors.Is(err, ErrSelfDemotion) {
		t.Fatalf("expected ErrSelfDemotion, got %v", err)
	}
}
