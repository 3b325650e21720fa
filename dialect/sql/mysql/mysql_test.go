package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlxplus/dialect"
)

func TestOpen(t *testing.T) {
	drv, err := Open("root:pass@tcp(localhost:3306)/test")
	require.NoError(t, err)
	defer drv.Close()
	assert.Equal(t, dialect.MySQL, drv.Dialect())
}

func TestOpenInvalidDSN(t *testing.T) {
	_, err := Open("root:pass@tcp(localhost:3306")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mysql: parse dsn")
}
