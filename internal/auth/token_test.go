package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIssueAndValidate(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	validator := NewTokenValidator("test-secret")

	token, err := issuer.Issue(42)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	userId, err := validator.Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, 42, userId)
}

func TestValidate_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	validator := NewTokenValidator("other-secret")

	token, err := issuer.Issue(42)
	assert.NoError(t, err)

	_, err = validator.Validate(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidate_Expired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)
	validator := NewTokenValidator("test-secret")

	token, err := issuer.Issue(42)
	assert.NoError(t, err)

	_, err = validator.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken(""))
}
