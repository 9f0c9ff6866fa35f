package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVerifier() *Verifier {
	return &Verifier{Key: []byte("test-secret"), Issuer: "https://id.example", Audience: "storefront"}
}

func TestVerifyRoundTrip(t *testing.T) {
	v := testVerifier()
	tok, err := v.Sign(Identity{UID: "u1", Email: "asha@example.com", Name: "Asha"}, time.Hour)
	require.NoError(t, err)

	id, err := v.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UID)
	assert.Equal(t, "asha@example.com", id.Email)
	assert.Equal(t, "Asha", id.DisplayName())
}

func TestVerifyFailures(t *testing.T) {
	v := testVerifier()

	expired, err := v.Sign(Identity{UID: "u1"}, -time.Minute)
	require.NoError(t, err)
	_, err = v.Verify(expired)
	var aerr *Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, CodeTokenExpired, aerr.Code)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	other := &Verifier{Key: []byte("other"), Issuer: v.Issuer, Audience: v.Audience}
	forged, err := other.Sign(Identity{UID: "u1"}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(forged)
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, CodeInvalidToken, aerr.Code)

	wrongAud := &Verifier{Key: v.Key, Issuer: v.Issuer, Audience: "someone-else"}
	tok, err := wrongAud.Sign(Identity{UID: "u1"}, time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(tok)
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, CodeInvalidToken, aerr.Code)

	_, err = v.Verify("")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestMessage(t *testing.T) {
	cases := []struct {
		flow Flow
		code string
		want string
	}{
		{FlowSignup, "auth/email-already-in-use", "Email already in use. Please login instead."},
		{FlowSignup, "weak-password", "Password should be at least 6 characters."},
		{FlowSignup, "auth/operation-not-allowed", "Signup failed. Please try again."},
		{FlowLogin, "auth/invalid-credential", "Invalid email or password."},
		{FlowLogin, "auth/invalid-email", "Invalid email address."},
		{FlowLogin, "auth/too-many-requests", "Login failed. Please try again."},
		{FlowGoogle, "auth/popup-closed-by-user", "Login cancelled."},
		{FlowGoogle, "", "Google login failed. Please try again."},
		{FlowSession, CodeTokenExpired, "Your session has expired. Please login again."},
		{Flow("other"), "x", "Something went wrong. Please try again."},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Message(tc.flow, tc.code), "%s/%s", tc.flow, tc.code)
	}
}

func TestDisplayNameFallsBackToEmail(t *testing.T) {
	assert.Equal(t, "ravi.k", Identity{Email: "ravi.k@example.com"}.DisplayName())
}

type adminSet map[string]bool

func (a adminSet) IsAdmin(_ context.Context, uid string) (bool, error) { return a[uid], nil }

func TestMiddleware(t *testing.T) {
	v := testVerifier()
	userTok, _ := v.Sign(Identity{UID: "u1", Email: "u1@example.com"}, time.Hour)
	adminTok, _ := v.Sign(Identity{UID: "boss", Email: "boss@example.com"}, time.Hour)

	var denied error
	deny := func(w http.ResponseWriter, _ *http.Request, err error) {
		denied = err
		w.WriteHeader(http.StatusUnauthorized)
	}
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	userOnly := Authenticate(v)(RequireUser(deny)(ok))
	adminOnly := Authenticate(v)(RequireAdmin(adminSet{"boss": true}, deny)(ok))

	do := func(h http.Handler, tok string) int {
		denied = nil
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, do(userOnly, ""))
	assert.ErrorIs(t, denied, ErrUnauthenticated)

	assert.Equal(t, http.StatusUnauthorized, do(userOnly, "garbage"))
	var aerr *Error
	assert.True(t, errors.As(denied, &aerr))

	assert.Equal(t, http.StatusNoContent, do(userOnly, userTok))

	assert.Equal(t, http.StatusUnauthorized, do(adminOnly, userTok))
	assert.ErrorIs(t, denied, ErrForbidden)
	assert.Equal(t, http.StatusNoContent, do(adminOnly, adminTok))
}
