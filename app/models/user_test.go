package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserHashesPassword(t *testing.T) {
	u, err := CreateUser("freelancer-jo", "jo@example.com", "s3cret-pass", ROLE_FREELANCER)
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret-pass", u.Password)
	assert.True(t, u.CheckPassword("s3cret-pass"))
	assert.False(t, u.CheckPassword("wrong"))
	assert.True(t, u.IsActive())
	assert.False(t, u.IsAdmin())
}

func TestIssueAPIKey(t *testing.T) {
	u := &User{}

	secret, err := u.IssueAPIKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(secret, "glg_"))
	assert.Equal(t, HashAPIKey(secret), u.APIKeyHash)
	assert.Equal(t, secret[:10], u.APIKeyPrefix)
	assert.NotNil(t, u.APIKeyCreatedAt)

	// A second issue invalidates the first key.
	second, err := u.IssueAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, secret, second)
	assert.NotEqual(t, HashAPIKey(secret), u.APIKeyHash)
}
