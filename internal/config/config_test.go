package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "DB_DRIVER", "BALANCE_RETRY_LIMIT", "ALLOW_NEGATIVE_BALANCE",
		"SETTLEMENT_CACHE_TTL", "SHARING_REQUEST_TTL", "EXPIRER_INTERVAL", "REDIS_DB"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, DriverMySQL, cfg.DBDriver)
	assert.False(t, cfg.AllowNegativeBalance)
	assert.Equal(t, 3, cfg.BalanceRetryLimit)
	assert.Equal(t, 5*time.Minute, cfg.SettlementCacheTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.SharingRequestTTL)
	assert.Equal(t, time.Hour, cfg.ExpirerInterval)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/ledger.db")
	t.Setenv("ALLOW_NEGATIVE_BALANCE", "true")
	t.Setenv("BALANCE_RETRY_LIMIT", "5")
	t.Setenv("SHARING_REQUEST_TTL", "48h")
	t.Setenv("EXPIRER_INTERVAL", "not-a-duration")

	cfg := LoadConfig()
	assert.True(t, cfg.AllowNegativeBalance)
	assert.Equal(t, 5, cfg.BalanceRetryLimit)
	assert.Equal(t, 48*time.Hour, cfg.SharingRequestTTL)
	assert.Equal(t, time.Hour, cfg.ExpirerInterval)
	assert.Equal(t, "/tmp/ledger.db", cfg.DSN())
}

func TestDSN(t *testing.T) {
	mysql := &Config{DBDriver: DriverMySQL, DBUser: "u", DBPassword: "p", DBHost: "db", DBName: "ledger"}
	assert.Equal(t, "u:p@tcp(db:3306)/ledger?parseTime=true", mysql.DSN())

	pg := &Config{DBDriver: DriverPostgres, DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "6543", DBName: "ledger"}
	assert.Equal(t, "host=db user=u password=p dbname=ledger port=6543 sslmode=disable TimeZone=UTC", pg.DSN())
}
