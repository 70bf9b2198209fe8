package jwt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	tok, err := Generate("secreto", "backoffice", 5, Subject{UserID: "u1", CompanyID: "c1", Email: "a@b.vn", Role: "accountant"})
	require.NoError(t, err)

	claims, err := Parse("secreto", tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "c1", claims.CompanyID)
	assert.Equal(t, "accountant", claims.Role)
	assert.Equal(t, "backoffice", claims.Issuer)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	tok, err := Generate("secreto", "backoffice", 5, Subject{UserID: "u1", CompanyID: "c1", Role: "admin"})
	require.NoError(t, err)

	_, err = Parse("otro", tok)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestParse_Expirado(t *testing.T) {
	tok, err := Generate("secreto", "backoffice", -1, Subject{UserID: "u1", CompanyID: "c1", Role: "admin"})
	require.NoError(t, err)

	_, err = Parse("secreto", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := Generate("", "x", 5, Subject{UserID: "u"})
	assert.Error(t, err)
}
