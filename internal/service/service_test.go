package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/Dhruvp18/pharma-grid-landing/internal/db"
	"github.com/Dhruvp18/pharma-grid-landing/internal/llm"
	"github.com/Dhruvp18/pharma-grid-landing/internal/photostore"
	"github.com/Dhruvp18/pharma-grid-landing/internal/store"
)

// stubModel is a minimal llm.Model for tests that records the last request.
type stubModel struct {
	reply string
	err   error
	last  llm.Request
	calls int
}

func (m *stubModel) Generate(_ context.Context, req llm.Request) (string, error) {
	m.last = req
	m.calls++
	return m.reply, m.err
}

// stubPhotoStore is a minimal in-memory photostore.PhotoStore for tests.
type stubPhotoStore struct {
	mu        sync.Mutex
	saved     map[string][]byte
	failAfter int // Save fails once this many objects are stored; 0 never fails
}

func newStubPhotoStore() *stubPhotoStore {
	return &stubPhotoStore{saved: make(map[string][]byte)}
}

func (s *stubPhotoStore) Save(_ context.Context, key, _ string, r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAfter > 0 && len(s.saved) >= s.failAfter {
		return errors.New("bucket unavailable")
	}
	data, _ := io.ReadAll(r)
	s.saved[key] = data
	return nil
}

func (s *stubPhotoStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.saved[key]
	if !ok {
		return nil, "", photostore.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), "image/jpeg", nil
}

func (s *stubPhotoStore) URL(key string) string {
	return "https://cdn.test/" + key
}

// recordingRecorder counts domain events.
type recordingRecorder struct {
	modelCalls   []string
	scans        []string
	uploadsOK    int
	uploadsFail  int
	codesCleared int64
}

func (r *recordingRecorder) ModelCall(op string, err error, _ time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.modelCalls = append(r.modelCalls, op+":"+outcome)
}

func (r *recordingRecorder) HandoverScan(result string) { r.scans = append(r.scans, result) }

func (r *recordingRecorder) ImageUpload(ok bool) {
	if ok {
		r.uploadsOK++
	} else {
		r.uploadsFail++
	}
}

func (r *recordingRecorder) CodesCleared(n int64) { r.codesCleared += n }

type testStores struct {
	db       *sqlx.DB
	items    *store.ItemStore
	profiles *store.ProfileStore
	bookings *store.BookingStore
	reviews  *store.ReviewStore
}

func newTestStores(t *testing.T) *testStores {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return &testStores{
		db:       d,
		items:    store.NewItemStore(d),
		profiles: store.NewProfileStore(d),
		bookings: store.NewBookingStore(d),
		reviews:  store.NewReviewStore(d),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
