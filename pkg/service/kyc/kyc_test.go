package kyc_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/amirasaad/axeria/infra/eventbus"
	"github.com/amirasaad/axeria/pkg/domain"
	"github.com/amirasaad/axeria/pkg/domain/events"
	kycdomain "github.com/amirasaad/axeria/pkg/domain/kyc"
	"github.com/amirasaad/axeria/pkg/domain/ledger"
	"github.com/amirasaad/axeria/pkg/repository"
	"github.com/amirasaad/axeria/pkg/service/kyc"
	"github.com/amirasaad/axeria/pkg/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memStorage) Save(_ context.Context, key string, r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = b
	return nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, key)
	return nil
}

func (m *memStorage) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.files))
	for k := range m.files {
		keys = append(keys, k)
	}
	return keys
}

func (m *memStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

const (
	pngBody  = "\x89PNG\r\n\x1a\npng-bytes"
	pdfBody  = "%PDF-1.7\n%rest"
	jpegBody = "\xff\xd8\xff\xe0"
)

func doc(contentType, body string) kyc.Document {
	return kyc.Document{
		Filename:    "passport",
		ContentType: contentType,
		Size:        int64(len(body)),
		Body:        strings.NewReader(body),
	}
}

func TestSubmitAndReview(t *testing.T) {
	ctx := context.Background()
	uow := testutils.NewTestUoW(t)
	bus := eventbus.NewWithMemory(testutils.DiscardLogger())
	store := &memStorage{files: map[string][]byte{}}
	svc := kyc.New(uow, bus, store, 1024, testutils.DiscardLogger())
	u := testutils.CreateUser(t, uow, ledger.Balances{})

	_, err := svc.Get(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	v, err := svc.Submit(ctx, u.ID, doc("image/png", pngBody))
	require.NoError(t, err)
	assert.Equal(t, kycdomain.StatusPending, v.Status)
	assert.True(t, strings.HasPrefix(v.Document, "kyc/"+u.ID.String()+"/"))
	assert.True(t, strings.HasSuffix(v.Document, ".png"))

	rc, got, err := svc.OpenDocument(ctx, v.ID)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, pngBody, string(body))
	assert.Equal(t, u.ID, got.UserID)

	rejected, err := svc.Reject(ctx, v.ID, "blurry")
	require.NoError(t, err)
	assert.Equal(t, kycdomain.StatusRejected, rejected.Status)

	again, err := svc.Submit(ctx, u.ID, doc("application/pdf; charset=binary", pdfBody))
	require.NoError(t, err)
	assert.Equal(t, v.ID, again.ID)
	assert.Equal(t, kycdomain.StatusPending, again.Status)
	assert.Empty(t, again.RejectedReason)
	assert.Equal(t, []string{again.Document}, store.keys())

	pending, err := svc.List(ctx, kycdomain.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	approved, err := svc.Approve(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, kycdomain.StatusApproved, approved.Status)
	_, err = svc.Approve(ctx, v.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	stored, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, kycdomain.StatusApproved, stored.Status)
	assert.True(t, strings.HasSuffix(stored.Document, ".pdf"))

	published := bus.Published()
	require.Len(t, published, 2)
	assert.IsType(t, events.KYCSubmitted{}, published[0])
}

func TestSubmitValidation(t *testing.T) {
	ctx := context.Background()
	uow := testutils.NewTestUoW(t)
	store := &memStorage{files: map[string][]byte{}}
	svc := kyc.New(uow, nil, store, 8, testutils.DiscardLogger())
	u := testutils.CreateUser(t, uow, ledger.Balances{})

	tests := []struct {
		name string
		doc  kyc.Document
	}{
		{"unsupported type", doc("text/plain", "hello")},
		{"html declared as png", doc("image/png", "<html>")},
		{"too large", doc("image/jpeg", "0123456789")},
		{"empty", doc("image/jpeg", "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, u.ID, tt.doc)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	assert.Empty(t, store.files)

	_, err := svc.Submit(ctx, uuid.New(), doc("image/jpeg", jpegBody))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Reject(ctx, uuid.New(), "no")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmitDetectsTypeFromContent(t *testing.T) {
	ctx := context.Background()
	uow := testutils.NewTestUoW(t)
	store := &memStorage{files: map[string][]byte{}}
	svc := kyc.New(uow, nil, store, 1024, testutils.DiscardLogger())
	u := testutils.CreateUser(t, uow, ledger.Balances{})

	_, err := svc.Submit(ctx, u.ID, doc("image/png", "<html><script>alert(1)</script></html>"))
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, store.keys())

	v, err := svc.Submit(ctx, u.ID, doc("application/octet-stream", pdfBody))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(v.Document, ".pdf"))
	assert.Equal(t, pdfBody, string(store.files[v.Document]))
}

type failingUoW struct {
	repository.UnitOfWork
}

func (failingUoW) Do(context.Context, func(repository.UnitOfWork) error) error {
	return errors.New("commit failed")
}

func TestSubmitRemovesDocumentWhenRecordFails(t *testing.T) {
	ctx := context.Background()
	uow := testutils.NewTestUoW(t)
	store := &memStorage{files: map[string][]byte{}}
	svc := kyc.New(failingUoW{uow}, nil, store, 1024, testutils.DiscardLogger())
	u := testutils.CreateUser(t, uow, ledger.Balances{})

	_, err := svc.Submit(ctx, u.ID, doc("image/jpeg", jpegBody))
	require.EqualError(t, err, "commit failed")
	assert.Empty(t, store.keys())
}
