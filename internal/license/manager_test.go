package license

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyport-app/agent/internal/logger"
)

func newTestManager(t *testing.T, baseURL string) *Manager {
	t.Helper()

	m, err := NewManager(Config{BaseURL: baseURL, Timeout: 2 * time.Second}, t.TempDir(), logger.Nop())
	require.NoError(t, err)

	return m
}

func licenseJSON(key string, credits float64) string {
	return fmt.Sprintf(`{"licenseKey":%q,"email":"dev@keyport.app","plan":"pro","credits":%v,"unlimited":false}`, key, credits)
}

func TestNewManager_GeneratesAndPersistsDeviceID(t *testing.T) {
	dir := t.TempDir()

	first, err := NewManager(Config{BaseURL: "http://localhost"}, dir, logger.Nop())
	require.NoError(t, err)
	require.NotEmpty(t, first.DeviceID())

	second, err := NewManager(Config{BaseURL: "http://localhost"}, dir, logger.Nop())
	require.NoError(t, err)

	assert.Equal(t, first.DeviceID(), second.DeviceID(), "device id must survive restarts")
}

func TestActivate_Success(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/license/activate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, licenseJSON("lk_123", 42))
	}))
	defer srv.Close()

	m := newTestManager(t, srv.URL)

	lic, err := m.Activate(context.Background(), "dev@keyport.app", "hunter2")
	require.NoError(t, err)

	assert.Equal(t, "lk_123", lic.Key)
	assert.Equal(t, "pro", lic.Plan)
	assert.Equal(t, 42.0, lic.Credits)
	assert.Equal(t, m.DeviceID(), gotBody["deviceId"], "device id must accompany remote license calls")

	cached, ok := m.Load()
	require.True(t, ok)
	assert.Equal(t, "lk_123", cached.Key)
}

func TestActivate_WrongPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	m := newTestManager(t, srv.URL)

	_, err := m.Activate(context.Background(), "dev@keyport.app", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, ok := m.Load()
	assert.False(t, ok)
}

func TestValidate_RejectionClearsCache(t *testing.T) {
	step := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/license/activate":
			fmt.Fprint(w, licenseJSON("lk_123", 10))
		case "/api/license/validate":
			step++
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer srv.Close()

	m := newTestManager(t, srv.URL)

	_, err := m.Activate(context.Background(), "dev@keyport.app", "hunter2")
	require.NoError(t, err)

	_, err = m.Validate(context.Background(), "lk_123")
	assert.True(t, errors.Is(err, ErrRejected))

	// a rejected license must not survive: Load returns nothing
	_, ok := m.Load()
	assert.False(t, ok)
}

func TestValidate_NetworkFailureKeepsCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, licenseJSON("lk_123", 10))
	}))

	m := newTestManager(t, srv.URL)
	_, err := m.Activate(context.Background(), "dev@keyport.app", "hunter2")
	require.NoError(t, err)

	srv.Close() // remote goes away

	_, err = m.Validate(context.Background(), "lk_123")
	assert.True(t, errors.Is(err, ErrRemoteUnavailable))

	// transient failure: cached credits/plan remain usable offline
	cached, ok := m.Load()
	require.True(t, ok)
	assert.Equal(t, "lk_123", cached.Key)
}

func TestValidate_ServerErrorIsConnectivityNotRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/license/activate" {
			fmt.Fprint(w, licenseJSON("lk_123", 10))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	m := newTestManager(t, srv.URL)
	_, err := m.Activate(context.Background(), "dev@keyport.app", "hunter2")
	require.NoError(t, err)

	_, err = m.Validate(context.Background(), "lk_123")
	assert.True(t, errors.Is(err, ErrRemoteUnavailable))

	_, ok := m.Load()
	assert.True(t, ok)
}

func TestDeactivate_ClearsLocallyEvenWhenRemoteFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, licenseJSON("lk_123", 10))
	}))

	m := newTestManager(t, srv.URL)
	_, err := m.Activate(context.Background(), "dev@keyport.app", "hunter2")
	require.NoError(t, err)

	srv.Close()

	require.NoError(t, m.Deactivate(context.Background(), "lk_123"))

	_, ok := m.Load()
	assert.False(t, ok)
}

func TestLicenseCache_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, licenseJSON("lk_persisted", 7))
	}))
	defer srv.Close()

	m, err := NewManager(Config{BaseURL: srv.URL}, dir, logger.Nop())
	require.NoError(t, err)
	_, err = m.Activate(context.Background(), "dev@keyport.app", "hunter2")
	require.NoError(t, err)

	reopened, err := NewManager(Config{BaseURL: srv.URL}, dir, logger.Nop())
	require.NoError(t, err)

	cached, ok := reopened.Load()
	require.True(t, ok)
	assert.Equal(t, "lk_persisted", cached.Key)
	assert.Equal(t, 7.0, cached.Credits)
}

func TestLicenseCache_CorruptFileDiscarded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, licenseFileName), []byte("{not json"), 0o600))

	m, err := NewManager(Config{BaseURL: "http://localhost"}, dir, logger.Nop())
	require.NoError(t, err)

	_, ok := m.Load()
	assert.False(t, ok)
}

func TestUpdateCredits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, licenseJSON("lk_123", 10))
	}))
	defer srv.Close()

	m := newTestManager(t, srv.URL)
	_, err := m.Activate(context.Background(), "dev@keyport.app", "hunter2")
	require.NoError(t, err)

	m.UpdateCredits(3)

	cached, ok := m.Load()
	require.True(t, ok)
	assert.Equal(t, 3.0, cached.Credits)
}

func TestParseExpiryFromJWT(t *testing.T) {
	exp := time.Now().Add(24 * time.Hour).Unix()
	claims := fmt.Sprintf(`{"sub":"dev@keyport.app","exp":%d}`, exp)
	token := fmt.Sprintf(
		"%s.%s.sig",
		base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`)),
		base64.RawURLEncoding.EncodeToString([]byte(claims)),
	)

	got := parseExpiryFromJWT(token)
	require.NotNil(t, got)
	assert.Equal(t, exp, got.Unix())

	assert.Nil(t, parseExpiryFromJWT("lk_not_a_jwt"))
	assert.Nil(t, parseExpiryFromJWT("a.b.c"))
}
