package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles del ledger. Un token sin rol es válido pero no pasa ninguna ruta protegida.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleBodeguero  = "bodeguero"
	RoleConsulta   = "consulta"
)

var (
	ErrInvalidToken   = errors.New("jwt: token inválido")
	ErrMissingCompany = errors.New("jwt: el token no indica empresa")
	ErrUnknownRole    = errors.New("jwt: rol desconocido")
)

// Identity usuario, empresa y rol que viajan en el token.
type Identity struct {
	UserID    string
	CompanyID string
	Role      string
}

// Claims incluye los claims estándar JWT más la identidad del ledger.
// Role va en el token para que RequireRole decida sin consultar la DB.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
}

// ValidRole true para los roles conocidos y para el rol vacío.
func ValidRole(role string) bool {
	switch role {
	case "", RoleAdmin, RoleSupervisor, RoleBodeguero, RoleConsulta:
		return true
	}
	return false
}

// Generate firma un token HS256 para la identidad; ttl negativo produce un token ya expirado.
func Generate(secret string, id Identity, issuer string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	if !ValidRole(id.Role) {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, id.Role)
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    id.UserID,
		CompanyID: id.CompanyID,
		Role:      id.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida firma y expiración y devuelve la identidad.
// Firma o expiración -> ErrInvalidToken; sin empresa -> ErrMissingCompany; rol ajeno -> ErrUnknownRole.
func Parse(secret, tokenString string) (Identity, error) {
	if secret == "" {
		return Identity{}, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.CompanyID == "" {
		return Identity{}, ErrMissingCompany
	}
	if !ValidRole(claims.Role) {
		return Identity{}, fmt.Errorf("%w: %q", ErrUnknownRole, claims.Role)
	}
	return Identity{UserID: claims.UserID, CompanyID: claims.CompanyID, Role: claims.Role}, nil
}
