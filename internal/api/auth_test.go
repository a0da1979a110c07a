package api

import (
	"net/http"
	"testing"

	"github.com/pakodev28/foodgram-project-react/internal/mocks"
	"github.com/pakodev28/foodgram-project-react/internal/testhelpers"
	"github.com/pakodev28/foodgram-project-react/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLoginHandler(t *testing.T) {
	env := setupTestRouter(t)
	testhelpers.CreateTestUser(t, env.DB, "alice")

	w := env.Do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": testhelpers.TestPassword,
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeJSON[types.TokenResponse](t, w)
	assert.NotEmpty(t, resp.AuthToken)

	w = env.Do(t, http.MethodGet, "/api/users/me", resp.AuthToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.Do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "non_field_errors")

	w = env.Do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields := decodeJSON[map[string][]string](t, w)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestLogoutRevokesToken(t *testing.T) {
	denylist := new(mocks.MockTokenDenylist)
	env := setupTestRouterWithDenylist(t, denylist)
	_, token := env.CreateTestUserAndToken(t, "bob")

	denylist.On("IsRevoked", mock.Anything).Return(false, nil).Once()
	denylist.On("Revoke", mock.Anything, mock.Anything).Return(nil).Once()
	denylist.On("IsRevoked", mock.Anything).Return(true, nil)

	w := env.Do(t, http.MethodPost, "/api/auth/token/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.Do(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	denylist.AssertExpectations(t)
}

func TestLogoutRequiresToken(t *testing.T) {
	env := setupTestRouter(t)

	w := env.Do(t, http.MethodPost, "/api/auth/token/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.Do(t, http.MethodPost, "/api/auth/token/logout", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
