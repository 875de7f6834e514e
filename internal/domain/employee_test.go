package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredential_Verify(t *testing.T) {
	t.Run("bcrypt", func(t *testing.T) {
		cred, err := NewBcryptCredential("s3cret")
		require.NoError(t, err)

		assert.Equal(t, CredentialBcrypt, cred.Scheme)
		assert.NotEqual(t, "s3cret", cred.Secret)
		assert.True(t, cred.Verify("s3cret"))
		assert.False(t, cred.Verify("wrong"))
		assert.False(t, cred.NeedsRehash())
	})

	t.Run("legacy plaintext", func(t *testing.T) {
		cred := Credential{Scheme: CredentialPlaintext, Secret: "1234"}

		assert.True(t, cred.Verify("1234"))
		assert.False(t, cred.Verify("12345"))
		assert.True(t, cred.NeedsRehash())
	})

	t.Run("bcrypt hash is not accepted as plaintext", func(t *testing.T) {
		cred, err := NewBcryptCredential("pw")
		require.NoError(t, err)

		assert.False(t, cred.Verify(cred.Secret))
	})

	t.Run("unknown scheme never verifies", func(t *testing.T) {
		cred := Credential{Scheme: "md5", Secret: "x"}
		assert.False(t, cred.Verify("x"))
	})
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("Admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	r, err = ParseRole("employee")
	require.NoError(t, err)
	assert.Equal(t, RoleEmployee, r)

	_, err = ParseRole("manager")
	assert.Error(t, err)
}

func TestParseEmployeeStatus(t *testing.T) {
	s, err := ParseEmployeeStatus("inactive")
	require.NoError(t, err)
	assert.Equal(t, EmployeeInactive, s)

	s, err = ParseEmployeeStatus("")
	require.NoError(t, err)
	assert.Equal(t, EmployeeActive, s)
}
