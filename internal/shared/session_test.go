package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func TestFlashSurvivesRedirect(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()

	postReq := httptest.NewRequest(http.MethodPost, "/inventory/products", nil)
	sess, err := sm.Load(ctx, postReq)
	require.NoError(t, err)
	sess.AddFlash(FlashMessage{Kind: "success", Message: "Product added."})
	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, postReq, sess))

	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, strings.HasPrefix(cookies[0].Value, sess.ID+"."))

	getReq := httptest.NewRequest(http.MethodGet, "/inventory", nil)
	getReq.AddCookie(cookies[0])
	loaded, err := sm.Load(ctx, getReq)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)

	flash := loaded.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "Product added.", flash.Message)
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), getReq, loaded))

	again, err := sm.Load(ctx, getReq)
	require.NoError(t, err)
	assert.Nil(t, again.PopFlash())
}

func TestTamperedCookieStartsFreshSession(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.Set("k", "v")
	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, req, sess))

	forged := httptest.NewRequest(http.MethodGet, "/", nil)
	forged.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: sess.ID})
	loaded, err := sm.Load(ctx, forged)
	require.NoError(t, err)
	assert.NotEqual(t, sess.ID, loaded.ID)
	assert.Empty(t, loaded.Get("k"))

	genuine := httptest.NewRequest(http.MethodGet, "/", nil)
	genuine.AddCookie(res.Result().Cookies()[0])
	loaded, err = sm.Load(ctx, genuine)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, loaded.ID)
	assert.Equal(t, "v", loaded.Get("k"))
}

func TestDestroyClearsCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	ctx := context.Background()
	req := httptest.NewRequest(http.MethodPost, "/session/reset", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)

	sm.Destroy(sess)
	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, req, sess))
	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestCSRFTokenRoundTrip(t *testing.T) {
	sm := newTestSessionManager(t)
	csrf := NewCSRFManager("csrfsecret")
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	token, err := csrf.EnsureToken(ctx, sess)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	same, err := csrf.EnsureToken(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, token, same)

	assert.NoError(t, csrf.VerifyToken(ctx, sess, token))
	assert.ErrorIs(t, csrf.VerifyToken(ctx, sess, "forged"), ErrCSRFTokenMismatch)
	assert.ErrorIs(t, csrf.VerifyToken(ctx, sess, ""), ErrCSRFTokenMissing)
}

func TestFormHelpers(t *testing.T) {
	form := url.Values{}
	form.Set("stock", " 12 ")
	form.Set("qty", "3.0")
	form.Set("price", "20000.50")
	form.Set("bad", "abc")
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	n, err := FormInt(req, "stock")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = FormInt(req, "qty")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = FormInt(req, "missing")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = FormInt(req, "bad")
	assert.ErrorIs(t, err, ErrFormValue)

	d, err := FormDecimal(req, "price")
	require.NoError(t, err)
	assert.Equal(t, "20000.5", d.String())

	_, err = FormDecimal(req, "bad")
	assert.ErrorIs(t, err, ErrFormValue)
}

func TestFormIntParsesBaseTenWholeNumbers(t *testing.T) {
	cases := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{raw: "010", want: 10},
		{raw: "007", want: 7},
		{raw: "-4", want: -4},
		{raw: "1e3", want: 1000},
		{raw: "0x10", wantErr: true},
		{raw: "0b11", wantErr: true},
		{raw: "0o17", wantErr: true},
		{raw: "2.9", wantErr: true},
		{raw: "1e30", wantErr: true},
		{raw: "9223372036854775808", wantErr: true},
		{raw: "1e999999", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			form := url.Values{"n": {tc.raw}}
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

			n, err := FormInt(req, "n")
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrFormValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, n)
		})
	}
}

func TestParseDate(t *testing.T) {
	fallback := time.Date(2026, 10, 18, 15, 4, 5, 0, time.UTC)

	got, err := ParseDate("", fallback)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDate("2026-03-01", fallback)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("not a date", fallback)
	assert.ErrorIs(t, err, ErrFormValue)
}
