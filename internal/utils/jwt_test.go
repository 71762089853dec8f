package utils

import (
	"testing"
	"time"

	"github.com/Baaaki/trail-catalog/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret      = "test-secret-key-for-jwt-testing"
	testWrongSecret = "wrong-secret-key-for-jwt-testing"
	testTokenTTL    = time.Hour
)

func newTokenUser(role models.Role) *models.User {
	return &models.User{
		ID:       uuid.NewString(),
		Username: "hiker",
		Email:    "hiker@example.com",
		Role:     role,
	}
}

func TestToken_RoundTrip(t *testing.T) {
	for _, role := range []models.Role{models.RoleBase, models.RoleAdmin} {
		t.Run(string(role), func(t *testing.T) {
			user := newTokenUser(role)

			token, err := GenerateToken(user, testSecret, testTokenTTL)
			require.NoError(t, err)

			claims, err := ValidateToken(token, testSecret)
			require.NoError(t, err)
			assert.Equal(t, user.ID, claims.UserID)
			assert.Equal(t, user.Username, claims.Username)
			assert.Equal(t, user.Email, claims.Email)
			assert.Equal(t, role, claims.Role)
			assert.Equal(t, TokenIssuer, claims.Issuer)
			assert.True(t, claims.ExpiresAt.Time.After(time.Now()))
		})
	}
}

func TestValidateToken_Rejections(t *testing.T) {
	user := newTokenUser(models.RoleBase)
	valid, err := GenerateToken(user, testSecret, testTokenTTL)
	require.NoError(t, err)
	expired, err := GenerateToken(user, testSecret, -time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID:           user.ID,
		Role:             models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           user.ID,
		Role:             models.RoleBase,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: TokenIssuer},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: user.ID,
		Role:   models.RoleBase,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	unknownRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: user.ID,
		Role:   models.Role("superuser"),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	cases := []struct {
		name   string
		token  string
		secret string
	}{
		{"empty", "", testSecret},
		{"garbage", "not-a-jwt-token", testSecret},
		{"incomplete", "a.b", testSecret},
		{"expired", expired, testSecret},
		{"wrong secret", valid, testWrongSecret},
		{"empty secret", valid, ""},
		{"tampered", valid[:len(valid)-5] + "XXXXX", testSecret},
		{"alg none", unsigned, testSecret},
		{"no expiry", noExpiry, testSecret},
		{"foreign issuer", foreign, testSecret},
		{"unknown role", unknownRole, testSecret},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := ValidateToken(tc.token, tc.secret)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func BenchmarkValidateToken(b *testing.B) {
	token, _ := GenerateToken(newTokenUser(models.RoleBase), testSecret, testTokenTTL)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ValidateToken(token, testSecret)
	}
}
