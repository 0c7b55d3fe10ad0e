package session

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/campuskart/storefront/internal/nav"
	"github.com/campuskart/storefront/pkg/kvstore"
	"github.com/campuskart/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNav struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingNav) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recordingNav) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func newTestService(t *testing.T, store kvstore.Store) (Service, *recordingNav) {
	t.Helper()
	rec := &recordingNav{}
	svc, err := NewService(store, rec, testLogger())
	require.NoError(t, err)
	return svc, rec
}

func TestNormalizeCamelAndSnakeSpellings(t *testing.T) {
	t.Parallel()

	u := Normalize(RawUser{FullNameSnake: "Asha Rao", RollNoSnake: "21BCE1042", Email: "asha@campus.edu"})
	assert.Equal(t, "Asha Rao", u.FullName)
	assert.Equal(t, "21BCE1042", u.RollNo)
	assert.Equal(t, "AR", u.Initials)
	assert.Equal(t, "Asha", u.FirstName)
	assert.Equal(t, "Rao", u.LastName)

	// Camel spellings win when both are present.
	u = Normalize(RawUser{FullName: "Ravi Kumar Iyer", FullNameSnake: "ignored", RollNo: "21A", RollNoSnake: "21B"})
	assert.Equal(t, "Ravi Kumar Iyer", u.FullName)
	assert.Equal(t, "21A", u.RollNo)
	assert.Equal(t, "Kumar Iyer", u.LastName)
}

func TestNormalizeKeepsSuppliedInitials(t *testing.T) {
	t.Parallel()

	u := Normalize(RawUser{FullName: "Asha Rao", Initials: "XY"})
	assert.Equal(t, "XY", u.Initials)
}

func TestInitials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"Asha Rao", "AR"},
		{"Asha", "A"},
		{"  asha   rao  ", "AR"},
		{"", "U"},
		{"   ", "U"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Initials(tt.name), "name %q", tt.name)
	}
}

func TestLoginSuccessPersistsAndRedirects(t *testing.T) {
	t.Parallel()

	store := kvstore.NewMemoryBackend().Open()
	svc, rec := newTestService(t, store)
	ctx := context.Background()

	svc.LoginSuccess(ctx, RawUser{FullName: "Asha Rao"}, "")
	require.Equal(t, []string{nav.PathLanding}, rec.Paths())
	assert.True(t, svc.IsAuthenticated())

	raw, err := store.Get(ctx, kvstore.KeyUser)
	require.NoError(t, err)
	assert.Contains(t, raw, `"fullName":"Asha Rao"`)
	assert.Contains(t, raw, `"initials":"AR"`)
}

func TestLoginSuccessSellRedirect(t *testing.T) {
	t.Parallel()

	svc, rec := newTestService(t, kvstore.NewMemoryBackend().Open())
	svc.LoginSuccess(context.Background(), RawUser{FullName: "Asha Rao"}, nav.RedirectSell)
	assert.Equal(t, []string{nav.PathListing}, rec.Paths())
}

func TestLogoutClearsUserAndCart(t *testing.T) {
	t.Parallel()

	store := kvstore.NewMemoryBackend().Open()
	svc, rec := newTestService(t, store)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, kvstore.KeyCart, `[{"id":"used-textbook","quantity":3}]`))
	svc.LoginSuccess(ctx, RawUser{FullName: "Asha Rao"}, "")

	svc.Logout(ctx)

	assert.False(t, svc.IsAuthenticated())
	assert.Nil(t, svc.Current())
	_, err := store.Get(ctx, kvstore.KeyUser)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
	_, err = store.Get(ctx, kvstore.KeyCart)
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
	assert.Equal(t, []string{nav.PathLanding, nav.PathLanding}, rec.Paths())
}

func TestHydrate(t *testing.T) {
	t.Parallel()

	store := kvstore.NewMemoryBackend().Open()
	ctx := context.Background()

	svc, _ := newTestService(t, store)
	svc.Hydrate(ctx)
	assert.False(t, svc.IsAuthenticated())

	require.NoError(t, store.Set(ctx, kvstore.KeyUser, `{"fullName":"Asha Rao","initials":"AR"}`))
	svc.Hydrate(ctx)
	require.True(t, svc.IsAuthenticated())
	assert.Equal(t, "Asha Rao", svc.Current().FullName)

	require.NoError(t, store.Set(ctx, kvstore.KeyUser, "{broken"))
	svc.Hydrate(ctx)
	assert.False(t, svc.IsAuthenticated())
}

func TestCurrentReturnsCopy(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, kvstore.NewMemoryBackend().Open())
	svc.Replace(&User{FullName: "Asha Rao"})

	first := svc.Current()
	first.FullName = "mutated"
	assert.Equal(t, "Asha Rao", svc.Current().FullName)
}
