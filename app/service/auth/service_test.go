package auth_test

import (
	"adminctl/app/client/api"
	"adminctl/app/dto"
	"adminctl/app/service/auth"
	"adminctl/app/service/session"
	"adminctl/app/util/testkit/clientkit"
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	meStatus atomic.Int32
	logouts  atomic.Int32
	posts    atomic.Int32
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req dto.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		if req.Password != "password" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"statusCode": http.StatusUnauthorized,
				"message":    "Invalid email or password",
			})

			return
		}

		clientkit.Envelope(w, dto.LoginResponse{
			Token: "tok-1",
			User: dto.User{
				ID:          1,
				Name:        "Alice",
				Email:       req.Email,
				Roles:       []dto.Role{{ID: 1, Name: "Viewer"}},
				Permissions: []dto.Permission{{Name: dto.PermUsersView}},
			},
		}, nil)
	})

	mux.HandleFunc("GET /api/v1/me", func(w http.ResponseWriter, r *http.Request) {
		if status := int(b.meStatus.Load()); status != 0 {
			w.WriteHeader(status)
			return
		}

		clientkit.Envelope(w, dto.User{
			ID:          1,
			Name:        "Alice",
			Roles:       []dto.Role{{ID: 1, Name: "Viewer"}},
			Permissions: []dto.Permission{{Name: dto.PermUsersView}, {Name: dto.PermRolesView}},
		}, nil)
	})

	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.logouts.Add(1)
		clientkit.Envelope(w, nil, nil)
	})

	mux.HandleFunc("POST /api/v1/auth/forgot-password", func(w http.ResponseWriter, r *http.Request) {
		b.posts.Add(1)
		clientkit.Envelope(w, nil, nil)
	})

	return mux
}

func setup(t *testing.T) (*backend, *auth.Service, *session.Store) {
	t.Helper()

	b := &backend{}
	di := clientkit.NewInjector(t, b.handler())

	return b, do.MustInvoke[*auth.Service](di), do.MustInvoke[*session.Store](di)
}

func TestLogin_StoresTokenAndUser(t *testing.T) {
	_, svc, store := setup(t)

	usr, err := svc.Login(context.Background(), "alice@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, "Alice", usr.Name)

	assert.Equal(t, "tok-1", store.Token())
	require.NotNil(t, store.UserInfo())
	assert.True(t, store.HasPermission(dto.PermUsersView))
	assert.True(t, store.HasRole("Viewer"))
	assert.False(t, store.HasPermission(dto.PermRolesView))
}

func TestLogin_RejectedCredentials(t *testing.T) {
	_, svc, store := setup(t)

	_, err := svc.Login(context.Background(), "alice@example.com", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, "Invalid email or password", api.Message(err))
	assert.False(t, store.HasToken())
}

func TestLogin_InvalidInputSkipsRequest(t *testing.T) {
	_, svc, store := setup(t)

	_, err := svc.Login(context.Background(), "not-an-email", "")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, api.StatusCode(err))
	assert.Contains(t, api.FieldErrors(err), "email")
	assert.False(t, store.HasToken())
}

func TestRefreshUserInfo(t *testing.T) {
	b, svc, store := setup(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "alice@example.com", "password")
	require.NoError(t, err)

	require.NoError(t, svc.RefreshUserInfo(ctx))
	assert.True(t, store.HasPermission(dto.PermRolesView))

	// server errors keep the previous snapshot
	b.meStatus.Store(http.StatusInternalServerError)
	require.Error(t, svc.RefreshUserInfo(ctx))
	assert.True(t, store.HasToken())
	assert.True(t, store.HasPermission(dto.PermRolesView))

	b.meStatus.Store(http.StatusUnauthorized)
	err = svc.RefreshUserInfo(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.False(t, store.HasToken())
	assert.Nil(t, store.UserInfo())
	assert.False(t, store.HasPermission(dto.PermUsersView))
}

func TestLogout(t *testing.T) {
	b, svc, store := setup(t)
	ctx := context.Background()

	// without a session the backend is not called
	require.NoError(t, svc.Logout(ctx))
	assert.Equal(t, int32(0), b.logouts.Load())

	_, err := svc.Login(ctx, "alice@example.com", "password")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx))
	assert.Equal(t, int32(1), b.logouts.Load())
	assert.False(t, store.HasToken())
	assert.Nil(t, store.UserInfo())
}

func TestForgotPassword(t *testing.T) {
	b, svc, _ := setup(t)
	ctx := context.Background()

	err := svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "bad"})
	require.Error(t, err)
	assert.Equal(t, int32(0), b.posts.Load())

	require.NoError(t, svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "alice@example.com"}))
	assert.Equal(t, int32(1), b.posts.Load())
}
