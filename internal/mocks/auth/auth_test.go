package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/content-portal/internal/adapters/memory"
	domainauth "github.com/target/content-portal/internal/domain/auth"
)

func TestPlainHasher(t *testing.T) {
	h := PlainHasher{}
	hash, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.Equal(t, "plain:pw1", hash)
	assert.True(t, h.Compare(hash, "pw1"))
	assert.False(t, h.Compare(hash, "pw2"))
	assert.False(t, h.Compare("pw1", "pw1"))

	boom := errors.New("boom")
	_, err = PlainHasher{HashErr: boom}.Hash("x")
	require.ErrorIs(t, err, boom)
}

func TestRecordingAnalytics(t *testing.T) {
	ctx := context.Background()
	r := &RecordingAnalytics{}
	require.NoError(t, r.RecordLogin(ctx))
	require.NoError(t, r.RecordPageVisit(ctx, domainauth.PageHome))
	require.NoError(t, r.RecordPageVisit(ctx, domainauth.PageHome))
	assert.Equal(t, 1, r.LoginCount())
	assert.Equal(t, 2, r.VisitCount(domainauth.PageHome))
	assert.Equal(t, 0, r.VisitCount(domainauth.PageAdmin))
}

func TestFuncDirectory_OverridesAndDelegates(t *testing.T) {
	ctx := context.Background()
	d := &FuncDirectory{Inner: memory.NewDirectory()}

	_, err := d.Lookup(ctx, "a@x.com")
	require.ErrorIs(t, err, domainauth.ErrAccountNotFound)

	d.LookupFunc = func(context.Context, string) (domainauth.Account, error) {
		return domainauth.Account{}, domainauth.ErrDirectoryUnavailable
	}
	_, err = d.Lookup(ctx, "a@x.com")
	require.ErrorIs(t, err, domainauth.ErrDirectoryUnavailable)

	users, err := d.ListByRole(ctx, domainauth.RoleUser)
	require.NoError(t, err)
	assert.Empty(t, users)

	empty := &FuncDirectory{}
	_, err = empty.Upsert(ctx, "a@x.com", domainauth.AccountFields{})
	require.ErrorIs(t, err, domainauth.ErrDirectoryUnavailable)
}
