// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-console/internal/common/config"
	"admin-console/internal/common/errors"
	"admin-console/internal/common/logger"
	"admin-console/internal/console"
	"admin-console/internal/models"
	"admin-console/internal/testutil"
)

const validToken = "Bearer e2e-token"

var redisServer *miniredis.Miniredis

func TestMain(m *testing.M) {
	var err error
	redisServer, err = miniredis.Run()
	if err != nil {
		panic(fmt.Sprintf("failed to start miniredis: %v", err))
	}

	code := m.Run()

	redisServer.Close()
	os.Exit(code)
}

// fakeBackend wires the routes a full console session touches. Every route
// except /login answers 401 unless the request carries validToken.
type fakeBackend struct {
	*testutil.Backend

	mu    sync.Mutex
	users map[int64]models.UserListItem
	roles map[int64]models.RoleListItem
	next  int64
}

func newFakeBackend(t *testing.T) *fakeBackend {
	b := &fakeBackend{
		Backend: testutil.NewBackend(t),
		users:   map[int64]models.UserListItem{1: {ID: 1, LoginName: "admin", Status: models.UserStatusNormal}},
		roles:   map[int64]models.RoleListItem{1: {ID: 1, RoleKey: "admin", Status: models.StatusEnabled}},
		next:    100,
	}

	b.Handle("POST", "/login", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("password") != "hashed" {
			testutil.WriteEnvelope(w, 500, "wrong login name or password", nil)
			return
		}
		testutil.WriteEnvelope(w, 200, "success", models.LoginResponse{Token: validToken})
	})
	b.authed("GET", "/user/info", func(w http.ResponseWriter, _ *http.Request) {
		testutil.WriteEnvelope(w, 200, "success", models.UserInfo{UserID: 1, LoginName: "admin", Roles: []string{"R_SUPER"}})
	})
	b.authed("GET", "/menu", func(w http.ResponseWriter, _ *http.Request) {
		testutil.WriteEnvelope(w, 200, "success", testutil.Menus())
	})
	b.authed("GET", "/dept/list", func(w http.ResponseWriter, _ *http.Request) {
		testutil.WriteEnvelope(w, 200, "success", testutil.Depts())
	})
	b.authed("GET", "/user/page", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		page := models.UserListData{Current: 1, Size: 20, Total: len(b.users), Records: []models.UserListItem{}}
		for _, u := range b.users {
			page.Records = append(page.Records, u)
		}
		testutil.WriteEnvelope(w, 200, "success", page)
	})
	b.authed("POST", "/user", func(w http.ResponseWriter, r *http.Request) {
		var in models.AddUserParams
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			testutil.WriteEnvelope(w, 500, err.Error(), nil)
			return
		}
		b.mu.Lock()
		b.next++
		b.users[b.next] = models.UserListItem{ID: b.next, LoginName: in.LoginName, Status: models.UserStatusNormal}
		b.mu.Unlock()
		testutil.WriteEnvelope(w, 200, "success", nil)
	})
	b.authed("POST", "/role", func(w http.ResponseWriter, r *http.Request) {
		var in models.AddRoleParams
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			testutil.WriteEnvelope(w, 500, err.Error(), nil)
			return
		}
		b.mu.Lock()
		b.next++
		id := b.next
		b.roles[id] = models.RoleListItem{ID: id, RoleKey: in.RoleKey, RoleName: in.RoleName, Status: models.StatusEnabled}
		b.mu.Unlock()
		testutil.WriteEnvelope(w, 200, "success", id)
	})
	return b
}

func (b *fakeBackend) authed(method, path string, fn http.HandlerFunc) {
	b.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != validToken {
			testutil.WriteEnvelope(w, 401, "token expired", nil)
			return
		}
		fn(w, r)
	})
}

func newConsole(t *testing.T, baseURL string, onLogout func()) *console.Console {
	t.Helper()
	cfg := config.Defaults(baseURL)
	cfg.API.TenantAlias = "e2e"
	cfg.Session.Debouncer = config.DebouncerRedis
	cfg.Session.RedisKey = fmt.Sprintf("e2e:%s", t.Name())
	cfg.Redis.Address = redisServer.Addr()

	c, err := console.New(context.Background(), cfg,
		console.WithLogger(logger.NewTestLogger(t)),
		console.WithLogoutHook(onLogout),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestFullE2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	backend := newFakeBackend(t)
	c := newConsole(t, backend.URL(), nil)

	t.Log("Logging in")
	loginFlow(ctx, t, c)

	t.Log("Bootstrapping session")
	bootstrapFlow(ctx, t, c)

	t.Log("Managing users and roles")
	managementFlow(ctx, t, c)
}

func loginFlow(ctx context.Context, t *testing.T, c *console.Console) {
	_, err := c.Auth.Login(ctx, models.LoginForm{LoginName: "admin", Password: "wrong"})
	herr, ok := errors.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, "wrong login name or password", herr.Message)
	assert.False(t, c.Session.IsLoggedIn())

	resp, err := c.Auth.Login(ctx, models.LoginForm{LoginName: "admin", Password: "hashed"})
	require.NoError(t, err)
	assert.Equal(t, validToken, resp.Token)
	assert.True(t, c.Session.IsLoggedIn())
}

func bootstrapFlow(ctx context.Context, t *testing.T, c *console.Console) {
	state, err := c.Bootstrap(ctx)
	require.NoError(t, err)

	assert.Equal(t, "admin", state.User.LoginName)

	require.Len(t, state.Routes, 3)
	users := state.Routes[0].Children[0]
	assert.Equal(t, "User", users.Name)
	assert.Equal(t, []models.AuthItem{
		{Title: "Add", AuthMark: "system:user:add"},
		{Title: "Edit", AuthMark: "system:user:edit"},
	}, users.Meta.AuthList)

	require.Len(t, state.Depts, 3)
	assert.Equal(t, "Platform", state.Depts[0].Children[0].Children[0].DeptName)
}

func managementFlow(ctx context.Context, t *testing.T, c *console.Console) {
	require.NoError(t, c.Users.AddUser(ctx, models.AddUserParams{LoginName: "jane", Username: "Jane", Password: "pw", DeptID: 2}))

	page, err := c.Users.GetUserList(ctx, models.UserSearchParams{
		PaginatingSearchParams: models.PaginatingSearchParams{Current: 1, Size: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	id, err := c.Roles.AddRole(ctx, models.AddRoleParams{RoleName: "Auditor", RoleKey: "audit", MenuIDs: []int64{1, 2}})
	require.NoError(t, err)
	assert.Greater(t, id, int64(100))
}

// Two console processes share one Redis window: a burst of 401s across both
// logs out exactly once.
func TestUnauthorizedStormAcrossConsoles(t *testing.T) {
	backend := newFakeBackend(t)

	var logouts atomic.Int32
	onLogout := func() { logouts.Add(1) }
	first := newConsole(t, backend.URL(), onLogout)
	second := newConsole(t, backend.URL(), onLogout)
	first.Session.SetToken("Bearer stale")
	second.Session.SetToken("Bearer stale")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		c := first
		if i%2 == 1 {
			c = second
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Users.GetUserInfo(context.Background())
			assert.True(t, errors.IsUnauthorized(err))
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return logouts.Load() == 1 }, 3*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), logouts.Load())
	assert.True(t, redisServer.Exists(fmt.Sprintf("e2e:%s", t.Name())))
}
