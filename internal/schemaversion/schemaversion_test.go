package schemaversion_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"smf/internal/schemaversion"
)

func TestDeriveIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := mysql.Run(ctx, "mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("root"),
		mysql.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start MySQL container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err)

	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.PingContext(ctx))

	_, err = db.ExecContext(ctx, `CREATE TABLE widgets (id INT PRIMARY KEY, name VARCHAR(64))`)
	require.NoError(t, err)

	first, err := schemaversion.Derive(ctx, db)
	require.NoError(t, err)

	second, err := schemaversion.Derive(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, first, second, "schema version must be stable across calls with no schema change")

	_, err = db.ExecContext(ctx, `ALTER TABLE widgets ADD COLUMN price DECIMAL(10,2)`)
	require.NoError(t, err)

	third, err := schemaversion.Derive(ctx, db)
	require.NoError(t, err)
	assert.NotEqual(t, second, third, "schema version must change when the catalog changes")
}
