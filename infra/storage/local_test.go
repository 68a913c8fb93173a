package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSaveOpen(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "kyc/user/doc.png", strings.NewReader("image")))
	rc, err := store.Open(ctx, "kyc/user/doc.png")
	require.NoError(t, err)
	defer rc.Close() //nolint:errcheck
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "image", string(b))

	_, err = store.Open(ctx, "kyc/user/missing.png")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../secret", "/etc/passwd", "", "a/../../b"} {
		err := store.Save(ctx, key, strings.NewReader("x"))
		assert.ErrorIs(t, err, domain.ErrValidation, key)
	}
}

func TestLocalSaveHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	err = store.Save(ctx, "kyc/doc.pdf", strings.NewReader("pdf"))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.Open(context.Background(), "kyc/doc.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLocalDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "kyc/user/old.pdf", strings.NewReader("%PDF-1.4")))
	require.NoError(t, store.Delete(ctx, "kyc/user/old.pdf"))
	_, err = store.Open(ctx, "kyc/user/old.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "kyc/user/old.pdf"))
	assert.ErrorIs(t, store.Delete(ctx, "../outside"), domain.ErrValidation)
}
