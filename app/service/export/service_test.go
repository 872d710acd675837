package export

import (
	"adminctl/app/util/testkit/clientkit"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	now := time.Date(2026, 3, 9, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, "users_2026-03-09.xlsx", FileName("users", "xlsx", now))
	assert.Equal(t, "activity_logs_2026-03-09.csv", FileName("activity_logs", "csv", now))

	// local evening east of UTC is still the previous UTC day
	tokyo := time.FixedZone("UTC+9", 9*60*60)
	assert.Equal(t, "users_2026-03-09.csv", FileName("users", "csv", time.Date(2026, 3, 10, 8, 0, 0, 0, tokyo)))
}

func TestCleanParams(t *testing.T) {
	values := CleanParams(map[string]string{
		"search": "alice",
		"status": "",
		"role":   "  ",
		"page":   "2",
	})

	assert.Equal(t, "page=2&search=alice", values.Encode())
}

func TestExport(t *testing.T) {
	var gotQuery, gotAccept string

	di := clientkit.NewInjector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/export", r.URL.Path)
		gotQuery = r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("id,name\n1,Alice\n"))
	}))
	do.Provide(di, New)

	svc := do.MustInvoke[*Service](di)
	svc.now = func() time.Time { return time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC) }

	dir := t.TempDir()
	path, err := svc.Export(context.Background(), Request{
		Resource: "users",
		Format:   "CSV",
		Params:   map[string]string{"search": "ali", "status": ""},
		Dir:      dir,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "users_2026-10-15.csv"), path)
	assert.Equal(t, "format=csv&search=ali", gotQuery)
	assert.Equal(t, "text/csv", gotAccept)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,Alice\n", string(data))
}

func TestExport_DefaultFormatAndValidation(t *testing.T) {
	di := clientkit.NewInjector(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "xlsx", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte("PK"))
	}))
	do.Provide(di, New)
	svc := do.MustInvoke[*Service](di)

	path, err := svc.Export(context.Background(), Request{Resource: "roles", Filename: "roles_report", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "roles_report_")
	assert.Equal(t, ".xlsx", filepath.Ext(path))

	_, err = svc.Export(context.Background(), Request{Resource: "roles", Format: "pdf", Dir: t.TempDir()})
	assert.Error(t, err)
}
