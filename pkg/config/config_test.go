package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("ADMIN_PASSWORD", "cambiar-123")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, "cambiar-123", cfg.Admin.Password)

	assert.Equal(t, "memory", cfg.DB.Driver)
	assert.Equal(t, int64(16<<20), cfg.Uploads.MaxBytes)
	assert.Equal(t, []string{"png", "jpg", "jpeg", "gif", "webp"}, cfg.Uploads.AllowedTypes)
	assert.False(t, cfg.SMTP.Enabled())
	assert.False(t, cfg.Rabbit.Enabled())
	assert.Equal(t, 10*time.Second, cfg.LDAP.Timeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LDAP_ENABLED", "true")
	t.Setenv("LDAP_SERVER", "10.0.0.1")
	t.Setenv("LDAP_USE_TLS", "true")
	t.Setenv("LDAP_PORT", "636")
	t.Setenv("UPLOAD_ALLOWED_EXT", ".PNG, pdf")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, "ldaps://10.0.0.1:636", cfg.LDAP.Addr())
	assert.Equal(t, []string{"png", "pdf"}, cfg.Uploads.AllowedTypes)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MemoryWithoutAdmin(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("LDAP_ENABLED", "false")
	_, err := Load()
	assert.ErrorContains(t, err, "ADMIN_PASSWORD")

	t.Setenv("DB_DRIVER", "postgres")
	_, err = Load()
	assert.NoError(t, err)
}

func TestLoad_LDAPWithoutServer(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("LDAP_ENABLED", "true")
	t.Setenv("LDAP_SERVER", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestDSN_EscapesPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "materiales", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/materiales?sslmode=disable", c.ConnectionString())
}
