package cmd

import (
	"adminctl/app/devserver"
	"adminctl/app/ui/gate"
	"adminctl/app/util/testkit"
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/samber/do"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	rootOnce sync.Once
	root     *cobra.Command
)

func testRoot() *cobra.Command {
	rootOnce.Do(func() {
		root = &cobra.Command{Use: "adminctl", SilenceUsage: true, SilenceErrors: true}
		Register(root)
	})

	return root
}

// setup runs a devserver and points the CLI at it with a fresh state dir.
func setup(t *testing.T) {
	t.Helper()

	di := testkit.NewInjector(t, testkit.Config(t, "http://127.0.0.1:1/api/v1/"))
	devserver.Provide(di)

	server := do.MustInvoke[*devserver.Server](di)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() {
		_ = server.Serve(ln)
	}()
	t.Cleanup(func() {
		_ = server.Shutdown()
	})

	t.Setenv("ADMINCTL_BASE_URL", "http://"+ln.Addr().String()+"/api/v1/")
	t.Setenv("ADMINCTL_STATE_DIR", t.TempDir())
	t.Setenv("ADMINCTL_HTTP_RETRY_ATTEMPTS", "1")
	t.Setenv("ADMINCTL_LOG_LEVEL", "error")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	r := testRoot()
	r.SetOut(out)
	r.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.yaml")))

	err := r.Execute()

	return out.String(), err
}

func TestSignInRequired(t *testing.T) {
	setup(t)

	_, err := execute(t, "whoami")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSignInRequired)
	assert.Equal(t, "sign in required", Describe(err))
}

func TestAdminSession(t *testing.T) {
	setup(t)

	out, err := execute(t, "login", "--email", "admin@example.com", "--password", "password")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Admin <admin@example.com>")

	out, err = execute(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Super Admin")

	out, err = execute(t, "users", "list", "--page", "1", "--limit", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "User List")
	assert.Contains(t, out, "viewer@example.com")
	assert.Contains(t, out, "[+ Add User]")
	assert.Contains(t, out, "Page 1 of 1, 2 total")

	out, err = execute(t, "users", "list", "--search", "nobody-matches", "--page", "1", "--limit", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "No data found")

	out, err = execute(t, "menu")
	require.NoError(t, err)
	assert.Contains(t, out, "Activity Logs")
	assert.Contains(t, out, "Roles")

	out, err = execute(t, "session", "status", "--check", "roles.delete")
	require.NoError(t, err)
	assert.Contains(t, out, "granted")

	dir := t.TempDir()
	out, err = execute(t, "export", "users", "--format", "csv", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported to")

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, strings.HasPrefix(files[0].Name(), "users_"))

	out, err = execute(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	_, err = execute(t, "users", "list", "--page", "1", "--limit", "10")
	assert.ErrorIs(t, err, ErrSignInRequired)
}

func TestViewerIsGated(t *testing.T) {
	setup(t)

	_, err := execute(t, "login", "--email", "viewer@example.com", "--password", "password")
	require.NoError(t, err)

	_, err = execute(t, "activity-logs", "list", "--page", "1", "--limit", "10")
	require.Error(t, err)
	assert.ErrorIs(t, err, gate.ErrForbidden)

	out, err := execute(t, "menu")
	require.NoError(t, err)
	assert.Contains(t, out, "Users")
	assert.NotContains(t, out, "Activity Logs")

	out, err = execute(t, "roles", "list", "--page", "1", "--limit", "10")
	require.NoError(t, err)
	assert.NotContains(t, out, "[+ Add Role]")
}
