package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmanaccio-api/pkg/jwt"
)

const secret = "secreto-de-prueba"

func TestGenerateYParse_ConservaUsuarioYRol(t *testing.T) {
	tok, err := jwt.Generate(secret, "u-1", "caja1", "empleado", "farmanaccio", 30)
	require.NoError(t, err)

	claims, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "caja1", claims.Username)
	assert.Equal(t, "empleado", claims.Role)
	assert.Equal(t, "farmanaccio", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParse_Rechaza(t *testing.T) {
	valid, err := jwt.Generate(secret, "u-1", "caja1", "admin", "farmanaccio", 30)
	require.NoError(t, err)
	expired, err := jwt.Generate(secret, "u-1", "caja1", "admin", "farmanaccio", -1)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"vencido", secret, expired},
		{"otro secreto", "otro-secreto", valid},
		{"malformado", secret, "a.b.c"},
		{"secreto vacío", "", valid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := jwt.Parse(tt.secret, tt.token)
			assert.Error(t, err)
		})
	}
}

func TestGenerate_SecretoVacio(t *testing.T) {
	_, err := jwt.Generate("", "u-1", "caja1", "admin", "farmanaccio", 30)
	assert.Error(t, err)
}
