package jwt_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

var bodeguero = jwt.Identity{UserID: "u1", CompanyID: "c1", Role: jwt.RoleBodeguero}

func sign(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	claims.ExpiresAt = jwtlib.NewNumericDate(time.Now().Add(time.Hour))
	tok, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestGenerateYParse(t *testing.T) {
	tok, err := jwt.Generate(secret, bodeguero, "stock-ledger-test", time.Hour)
	require.NoError(t, err)

	id, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, bodeguero, id)
}

func TestGenerate_RolDesconocido(t *testing.T) {
	_, err := jwt.Generate(secret, jwt.Identity{UserID: "u1", CompanyID: "c1", Role: "vendedor"}, "x", time.Hour)
	assert.ErrorIs(t, err, jwt.ErrUnknownRole)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", bodeguero, "x", time.Hour)
	assert.Error(t, err)
}

func TestParse_Rechazos(t *testing.T) {
	expired, err := jwt.Generate(secret, bodeguero, "x", -time.Minute)
	require.NoError(t, err)
	valid, err := jwt.Generate(secret, bodeguero, "x", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
		want   error
	}{
		{"expirado", secret, expired, jwt.ErrInvalidToken},
		{"otro secret", "otro-secret-completamente-distinto", valid, jwt.ErrInvalidToken},
		{"malformado", secret, "a.b.c", jwt.ErrInvalidToken},
		{"sin empresa", secret, sign(t, jwt.Claims{UserID: "u1", Role: jwt.RoleAdmin}), jwt.ErrMissingCompany},
		{"rol ajeno", secret, sign(t, jwt.Claims{UserID: "u1", CompanyID: "c1", Role: "vendedor"}), jwt.ErrUnknownRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := jwt.Parse(tt.secret, tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_SinRolEsValido(t *testing.T) {
	id, err := jwt.Parse(secret, sign(t, jwt.Claims{UserID: "u1", CompanyID: "c1"}))
	require.NoError(t, err)
	assert.Empty(t, id.Role)
}
