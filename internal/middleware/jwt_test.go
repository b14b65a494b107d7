package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func protectedApp(secret string) *fiber.App {
	app := fiber.New()
	app.Get("/secure", JWTProtected(secret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user": c.Locals("username"), "role": c.Locals("role")})
	})
	return app
}

func TestGenerateTokensCarryClaims(t *testing.T) {
	access, refresh, err := GenerateTokens("alice", testSecret, "Alice", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(access, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "Alice", claims.DisplayName)
	assert.Equal(t, "admin", claims.Role)

	refreshClaims := &Claims{}
	_, err = jwt.ParseWithClaims(refresh, refreshClaims, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, refreshClaims.ExpiresAt.After(claims.ExpiresAt.Time),
		"refresh token outlives the access token")
}

func TestJWTProtectedAcceptsValidToken(t *testing.T) {
	access, _, err := GenerateTokens("alice", testSecret, "", "admin")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	resp, err := protectedApp(testSecret).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejectsBadRequests(t *testing.T) {
	wrongSecret, _, err := GenerateTokens("alice", "some-other-secret", "", "")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not a bearer token", "Basic abc123"},
		{"wrong secret", "Bearer " + wrongSecret},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/secure", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := protectedApp(testSecret).Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}
