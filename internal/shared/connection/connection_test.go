package connection

import (
	"testing"

	"go-leave/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestDialector(t *testing.T) {
	t.Run("mysql", func(t *testing.T) {
		d, err := Dialector(config.DBConfig{Driver: "mysql", Host: "db", Port: "3306", User: "root", Name: "leave"})

		assert.NoError(t, err)
		assert.Equal(t, "mysql", d.Name())
	})

	t.Run("postgres", func(t *testing.T) {
		d, err := Dialector(config.DBConfig{Driver: "postgres", Host: "db", Port: "5432", User: "leave", Name: "leave"})

		assert.NoError(t, err)
		assert.Equal(t, "postgres", d.Name())
	})

	t.Run("negative unknown driver", func(t *testing.T) {
		_, err := Dialector(config.DBConfig{Driver: "oracle"})

		assert.Error(t, err)
	})
}
