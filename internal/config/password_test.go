package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasswordConfig(t *testing.T) {
	tests := []struct {
		name     string
		cost     string
		wantCost int
		wantErr  bool
	}{
		{"default cost", "", DefaultBcryptCost, false},
		{"explicit cost", "10", 10, false},
		{"maximum cost", "14", 14, false},
		{"cost too low", "4", 0, true},
		{"cost too high", "20", 0, true},
		{"not a number", "expensive", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BCRYPT_COST", tt.cost)
			t.Setenv("PASSWORD_PEPPER", "")

			cfg, err := NewPasswordConfig()

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cfg.BcryptCost)
		})
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: MinBcryptCost}

	hash, err := cfg.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, cfg.VerifyPassword("correct horse battery staple", hash))
	assert.False(t, cfg.VerifyPassword("wrong password", hash))
}

func TestPasswordConfig_HashIsSalted(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: MinBcryptCost}

	first, err := cfg.HashPassword("same password")
	require.NoError(t, err)
	second, err := cfg.HashPassword("same password")
	require.NoError(t, err)

	// bcrypt salts internally, so two hashes of the same input differ but
	// both verify.
	assert.NotEqual(t, first, second)
	assert.True(t, cfg.VerifyPassword("same password", first))
	assert.True(t, cfg.VerifyPassword("same password", second))
}

func TestPasswordConfig_Pepper(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: MinBcryptCost, Pepper: "global-secret"}
	plain := &PasswordConfig{BcryptCost: MinBcryptCost}

	hash, err := peppered.HashPassword("password123")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("password123", hash))
	// Without the pepper the same password must not verify.
	assert.False(t, plain.VerifyPassword("password123", hash))
}

func TestPasswordConfig_VerifyPassword_BadHash(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: MinBcryptCost}

	assert.False(t, cfg.VerifyPassword("anything", "not-a-bcrypt-hash"))
	assert.False(t, cfg.VerifyPassword("anything", ""))
}

func TestPasswordConfig_LongPassword(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: MinBcryptCost}

	// bcrypt rejects inputs over 72 bytes rather than truncating.
	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}

	_, err := cfg.HashPassword(string(long))
	assert.Error(t, err)
}
