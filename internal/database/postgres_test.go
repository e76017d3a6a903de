package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 5433, User: "u", Password: "p", DBName: "reports", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=reports sslmode=disable", cfg.DSN())
}
