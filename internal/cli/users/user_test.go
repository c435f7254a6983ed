package users

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitlit/internal/cli"
	"github.com/julianstephens/habitlit/internal/config"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/storage/sqlite"
)

func newContext(t *testing.T, b storage.Backend) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	ctx := cli.NewContext(&config.Config{ConfigDir: t.TempDir()}, nil, b, config.DefaultCatalog())
	ctx.Out = out
	return ctx, out
}

func newSQLiteContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "habits.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return newContext(t, store)
}

func stubPrompt(t *testing.T, password string) {
	t.Helper()
	orig := promptPassword
	promptPassword = func() (string, error) { return password, nil }
	t.Cleanup(func() { promptPassword = orig })
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"a@example.com", "a@example.com", false},
		{"  A@Example.COM ", "a@example.com", false},
		{"not-an-email", "", true},
		{"Alice <a@example.com>", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := normalizeEmail(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserAddAndShow(t *testing.T) {
	ctx, out := newSQLiteContext(t)

	require.NoError(t, (&UserAddCmd{Email: "A@example.com", Password: "correct horse"}).Run(ctx))
	assert.Contains(t, out.String(), "a@example.com")

	u, err := ctx.Backend.GetUserByEmail("a@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.NotEqual(t, "correct horse", u.PasswordHash)
	assert.True(t, CheckPassword(u.PasswordHash, "correct horse"))
	assert.False(t, CheckPassword(u.PasswordHash, "wrong horse"))

	out.Reset()
	require.NoError(t, (&UserShowCmd{Email: "a@example.com"}).Run(ctx))
	assert.Contains(t, out.String(), "a@example.com")

	err = (&UserAddCmd{Email: "a@example.com", Password: "another password"}).Run(ctx)
	assert.ErrorIs(t, err, storage.ErrDuplicateEmail)

	assert.Error(t, (&UserShowCmd{Email: "missing@example.com"}).Run(ctx))
}

func TestUserAddPrompts(t *testing.T) {
	ctx, _ := newSQLiteContext(t)
	stubPrompt(t, "prompted secret")

	require.NoError(t, (&UserAddCmd{Email: "b@example.com"}).Run(ctx))
	require.NoError(t, (&UserVerifyCmd{Email: "b@example.com"}).Run(ctx))
	assert.Error(t, (&UserVerifyCmd{Email: "b@example.com", Password: "not the secret"}).Run(ctx))
}

func TestUserAddShortPassword(t *testing.T) {
	ctx, _ := newSQLiteContext(t)

	assert.Error(t, (&UserAddCmd{Email: "c@example.com", Password: "short"}).Run(ctx))
	u, err := ctx.Backend.GetUserByEmail("c@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserCommandsOnFileBackend(t *testing.T) {
	ctx, _ := newContext(t, storage.NewJSONStore(filepath.Join(t.TempDir(), "habits.json")))

	assert.ErrorIs(t, (&UserAddCmd{Email: "a@example.com", Password: "long enough"}).Run(ctx), storage.ErrUnsupported)
	assert.ErrorIs(t, (&UserShowCmd{Email: "a@example.com"}).Run(ctx), storage.ErrUnsupported)
}
