package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuePairAndVerify(t *testing.T) {
	iss := NewIssuer("test-secret-0123456789", time.Minute, time.Hour)
	pair, err := iss.IssuePair("user-1", "me@example.com")
	require.NoError(t, err)

	claims, err := iss.Verify(pair.Access, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "me@example.com", claims.Email)

	claims, err = iss.Verify(pair.Refresh, TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, TypeRefresh, claims.Type)
}

func TestVerify_RejectsWrongType(t *testing.T) {
	iss := NewIssuer("test-secret-0123456789", time.Minute, time.Hour)
	pair, err := iss.IssuePair("user-1", "")
	require.NoError(t, err)

	_, err = iss.Verify(pair.Refresh, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = iss.Verify(pair.Access, TypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	iss := NewIssuer("test-secret-0123456789", time.Minute, time.Hour)
	start := time.Now()
	iss.now = func() time.Time { return start }
	pair, err := iss.IssuePair("user-1", "")
	require.NoError(t, err)

	iss.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = iss.Verify(pair.Access, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Verify(pair.Refresh, TypeRefresh)
	assert.NoError(t, err)
}

func TestVerify_WrongSecret(t *testing.T) {
	pair, err := NewIssuer("secret-one-0123456789", 0, 0).IssuePair("u", "")
	require.NoError(t, err)
	_, err = NewIssuer("secret-two-0123456789", 0, 0).Verify(pair.Access, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = NewIssuer("secret-two-0123456789", 0, 0).Verify("not-a-jwt", TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
	assert.False(t, CheckPassword("not-a-hash", "hunter22"))
}
