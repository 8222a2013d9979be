package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecretKey = []byte("test-secret-key")

func TestBuildJWTStringAndGetUserIDFromToken(t *testing.T) {
	a := New(testSecretKey, time.Hour)

	token, err := a.BuildJWTString("user-1")
	require.NoError(t, err)

	userID, err := a.GetUserIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestGetUserIDFromTokenRejectsBadTokens(t *testing.T) {
	a := New(testSecretKey, time.Hour)

	t.Run("expired token", func(t *testing.T) {
		issuedLongAgo := New(testSecretKey, time.Hour, WithClock(func() time.Time {
			return time.Now().Add(-2 * time.Hour)
		}))
		token, err := issuedLongAgo.BuildJWTString("user-1")
		require.NoError(t, err)

		_, err = a.GetUserIDFromToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("foreign signature", func(t *testing.T) {
		other := New([]byte("another-secret"), time.Hour)
		token, err := other.BuildJWTString("user-1")
		require.NoError(t, err)

		_, err = a.GetUserIDFromToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unexpected signing method", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			UserID: "user-1",
		})
		tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = a.GetUserIDFromToken(tokenString)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing user ID", func(t *testing.T) {
		token, err := a.BuildJWTString("")
		require.NoError(t, err)

		_, err = a.GetUserIDFromToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := a.GetUserIDFromToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name          string
		requireBearer bool
		header        string
		want          string
		wantErr       error
	}{
		{name: "bearer", header: "Bearer abc", want: "abc"},
		{name: "bare token tolerated", header: "abc", want: "abc"},
		{name: "empty header", header: "", wantErr: ErrUnauthenticated},
		{name: "bearer without token", header: "Bearer ", wantErr: ErrUnauthenticated},
		{name: "strict bearer", requireBearer: true, header: "Bearer abc", want: "abc"},
		{name: "strict rejects bare token", requireBearer: true, header: "abc", wantErr: ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(testSecretKey, time.Hour, WithRequireBearerPrefix(tt.requireBearer))

			got, err := a.ExtractToken(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthenticateUser(t *testing.T) {
	a := New(testSecretKey, time.Hour)

	var seenUserID string
	handler := a.AuthenticateUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token, err := a.BuildJWTString("user-42")
	require.NoError(t, err)

	t.Run("valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/content", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-42", seenUserID)
	})

	t.Run("no header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/content", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"User not authenticated"}`, rec.Body.String())
	})

	t.Run("tampered token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/content", nil)
		req.Header.Set("Authorization", "Bearer "+token+"x")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"Invalid or expired token"}`, rec.Body.String())
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("pw1", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", hash)

	ok, err := ComparePassword(hash, "pw1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ComparePassword(hash, "pw2")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ComparePassword("not-a-bcrypt-hash", "pw1")
	assert.Error(t, err)
}
