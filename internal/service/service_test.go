package service

import (
	"bitwise74/drive-api/internal/model"
	"bitwise74/drive-api/internal/repository"
	"bitwise74/drive-api/internal/session"
	"bitwise74/drive-api/internal/storage"
	"bitwise74/drive-api/internal/testutil"
	"bitwise74/drive-api/pkg/security"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	To, Subject, Body string
}

type recordMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (r *recordMailer) Send(to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sent = append(r.sent, sentMail{to, subject, body})
	return nil
}

func (r *recordMailer) last(t *testing.T) sentMail {
	r.mu.Lock()
	defer r.mu.Unlock()

	require.NotEmpty(t, r.sent)
	return r.sent[len(r.sent)-1]
}

// trackingStorage remembers which blobs currently exist
type trackingStorage struct {
	storage.Storage

	mu   sync.Mutex
	live map[string]bool
}

func (s *trackingStorage) Put(ctx context.Context, key string, r io.Reader, size int64, ct string) error {
	if err := s.Storage.Put(ctx, key, r, size, ct); err != nil {
		return err
	}

	s.mu.Lock()
	s.live[key] = true
	s.mu.Unlock()

	return nil
}

func (s *trackingStorage) Delete(ctx context.Context, key string) error {
	err := s.Storage.Delete(ctx, key)

	s.mu.Lock()
	delete(s.live, key)
	s.mu.Unlock()

	return err
}

func (s *trackingStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.live)
}

type env struct {
	ctx      context.Context
	store    *repository.Store
	blobs    *trackingStorage
	sessions *session.Manager
	mailer   *recordMailer
	settings *Settings
	auth     *Auth
	files    *Files
	shares   *Shares
	admin    *Admin
}

const publicURL = "https://drive.example.com"

func newEnv(t *testing.T) *env {
	t.Helper()

	conn := testutil.NewDB(t)
	store := repository.New(conn)
	blobs := &trackingStorage{Storage: storage.NewLocalFs(afero.NewMemMapFs()), live: map[string]bool{}}
	sessions := session.NewManager(session.NewGormStore(conn), "secret", time.Hour)
	argon := security.NewWeak()
	mailer := &recordMailer{}
	settings := NewSettings(store, SettingsView{
		DefaultQuota:      1000,
		AllowRegistration: true,
		MaxUploadSize:     500,
	})

	return &env{
		ctx:      context.Background(),
		store:    store,
		blobs:    blobs,
		sessions: sessions,
		mailer:   mailer,
		settings: settings,
		auth:     NewAuth(store, sessions, argon, settings, mailer, publicURL),
		files:    NewFiles(store, blobs, settings),
		shares:   NewShares(store, blobs, argon, publicURL),
		admin:    NewAdmin(store, blobs, sessions, argon, settings),
	}
}

func (e *env) user(t *testing.T, email string) *model.User {
	t.Helper()

	u, _, err := e.auth.Register(e.ctx, RegisterInput{Name: "Test", Email: email, Password: testutil.Password})
	require.NoError(t, err)

	return u
}

func (e *env) usedSpace(t *testing.T, userID string) int64 {
	t.Helper()

	u, err := e.store.Users().ByID(e.ctx, userID)
	require.NoError(t, err)

	return u.UsedSpace
}

// sumOfSizes is the used space a user should have according to their rows
func (e *env) sumOfSizes(t *testing.T, userID string) int64 {
	t.Helper()

	files, err := e.store.Files().ByUser(e.ctx, userID)
	require.NoError(t, err)

	var sum int64
	for _, f := range files {
		if !f.IsFolder {
			sum += f.Size
		}
	}

	return sum
}

func file(name, content string) Upload {
	return Upload{
		Name:        name,
		Size:        int64(len(content)),
		ContentType: "application/octet-stream",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func readBlob(t *testing.T, b *Blob) string {
	t.Helper()

	defer b.Body.Close()
	data, err := io.ReadAll(b.Body)
	require.NoError(t, err)

	return string(data)
}

func assertKind(t *testing.T, err error, want *Error) {
	t.Helper()

	require.Error(t, err)
	assert.ErrorIs(t, err, want)
}

func TestKindHTTPStatus(t *testing.T) {
	cases := map[*Error]int{
		ErrEmailTaken:         400,
		ErrInvalidCredentials: 401,
		ErrAccountBlocked:     403,
		ErrNotFound:           404,
		ErrQuotaExceeded:      400,
		ErrPasswordRequired:   401,
		ErrInvalidPassword:    401,
		ErrNotBrowsable:       400,
		ErrNotFoundOnDisk:     404,
		ErrIsAFolder:          400,
	}

	for err, status := range cases {
		assert.Equal(t, status, err.Kind.HTTPStatus(), err.Message)
	}

	assert.Equal(t, 500, KindOf(io.EOF).HTTPStatus())
	assert.Equal(t, KindValidation, KindOf(Validation("bad")))
	assert.Equal(t, "Bad", Validation("bad").Message)
}
