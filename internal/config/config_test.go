package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, "3306", cfg.DB.Port)
	assert.Equal(t, []string{"Vacation", "Sick Leave", "Personal", "Bereavement", "Unpaid"}, cfg.LeaveTypes)
	assert.Equal(t, 20, cfg.LeaveQuotas["Vacation"])
	assert.NotContains(t, cfg.LeaveQuotas, "Unpaid")
	assert.Equal(t, uint64(3), cfg.StorageRetryMax)
}

func TestLoad_Postgres(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("LEAVE_TYPES", "Annual, Sick")
	t.Setenv("LEAVE_QUOTAS", "Annual:15")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, []string{"Annual", "Sick"}, cfg.LeaveTypes)
	assert.Equal(t, map[string]int{"Annual": 15}, cfg.LeaveQuotas)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("DB_DRIVER", "sqlite")

	_, err := Load()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
}

func TestLoad_JWTSecret(t *testing.T) {
	t.Run("negative empty secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		_, err := Load()

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("negative whitespace secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "                                    ")

		_, err := Load()

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("negative short secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")

		_, err := Load()

		assert.EqualError(t, err, "JWT_SECRET must be at least 32 characters")
	})

	t.Run("success", func(t *testing.T) {
		t.Setenv("JWT_SECRET", testSecret)

		cfg, err := Load()

		assert.NoError(t, err)
		assert.Equal(t, testSecret, cfg.JWTSecret)
	})
}
