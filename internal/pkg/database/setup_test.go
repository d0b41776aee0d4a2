package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/IdentitySync/internal/pkg/config"
)

func TestDSNBuilders(t *testing.T) {
	cfg := config.Database{Host: "db", Port: "3306", User: "u", Password: "p", Name: "sync"}

	assert.Equal(t, "u:p@tcp(db:3306)/sync?charset=utf8mb4&parseTime=True&loc=Local", mysqlDSN(cfg))
	assert.Equal(t, "host=db user=u password=p dbname=sync port=5432 sslmode=disable TimeZone=UTC", postgresDSN(cfg))

	cfg.DSN = "custom"
	assert.Equal(t, "custom", mysqlDSN(cfg))
	assert.Equal(t, "custom", postgresDSN(cfg))
}

func TestOpenMemoryIsolated(t *testing.T) {
	first, err := OpenMemory()
	require.NoError(t, err)
	second, err := OpenMemory()
	require.NoError(t, err)

	require.NoError(t, first.Exec("INSERT INTO admins (email, name, password) VALUES ('a@example.com', 'A', 'x')").Error)

	var count int64
	require.NoError(t, second.Table("admins").Count(&count).Error)
	assert.Zero(t, count)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.Database{Driver: "oracle"})
	assert.Error(t, err)
}
