package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"os"
	"os/exec"
	"testing"

	"dzgamezone-be/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "localhost",
		DBUser:     "test_user",
		DBPassword: "test_password",
		DBName:     "test_db",
		DBPort:     "5432",
	}

	expected := "host=localhost user=test_user password=test_password dbname=test_db port=5432 sslmode=disable"
	assert.Equal(t, expected, buildDSN(cfg))
}

func TestNewDatabase_ConnectionFailure(t *testing.T) {
	cfg := &config.Config{
		DBHost: "invalid_host",
		DBPort: "5432",
	}

	db, err := NewDatabase(cfg)

	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "failed to ping DB")
}

func TestNewDatabase_InvalidDriver(t *testing.T) {
	db, err := newDatabaseWithDriver(&config.Config{}, "invalid_driver_name")

	assert.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "failed to connect to DB")
}

func TestInitDB_Failure(t *testing.T) {
	// Re-run the test binary as a subprocess to observe log.Fatalf
	if os.Getenv("BE_CRASHER") == "1" {
		InitDB(&config.Config{DBHost: "invalid_host", DBPort: "5432"})
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestInitDB_Failure")
	cmd.Env = append(os.Environ(), "BE_CRASHER=1")
	err := cmd.Run()

	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		return
	}
	t.Fatalf("process ran with err %v, want exit status 1", err)
}

func TestIndexModels(t *testing.T) {
	models := IndexModels()

	for _, coll := range []string{CollCategories, CollProducts, CollWilayas, CollOrders} {
		assert.NotEmpty(t, models[coll], coll)
	}

	unique := func(coll string) []string {
		var names []string
		for _, m := range models[coll] {
			if m.Options != nil && m.Options.Unique != nil && *m.Options.Unique {
				names = append(names, *m.Options.Name)
			}
		}
		return names
	}

	assert.ElementsMatch(t, []string{"uniq_name", "uniq_slug"}, unique(CollCategories))
	assert.ElementsMatch(t, []string{"uniq_slug", "uniq_variant_sku"}, unique(CollProducts))
	assert.ElementsMatch(t, []string{"uniq_numero", "uniq_nom"}, unique(CollWilayas))
}

// --- Mock Driver for Success Test ---

type mockDriver struct{}

func (m *mockDriver) Open(name string) (driver.Conn, error) {
	return &mockConn{}, nil
}

type mockConn struct{}

func (c *mockConn) Prepare(query string) (driver.Stmt, error) { return &mockStmt{}, nil }
func (c *mockConn) Close() error                              { return nil }
func (c *mockConn) Begin() (driver.Tx, error)                 { return nil, nil }

type mockStmt struct{}

func (s *mockStmt) Close() error                                    { return nil }
func (s *mockStmt) NumInput() int                                   { return 0 }
func (s *mockStmt) Exec(args []driver.Value) (driver.Result, error) { return nil, nil }
func (s *mockStmt) Query(args []driver.Value) (driver.Rows, error)  { return nil, nil }

func init() {
	sql.Register("mock_driver_success", &mockDriver{})
}

func TestNewDatabase_Success(t *testing.T) {
	db, err := newDatabaseWithDriver(&config.Config{DBHost: "localhost"}, "mock_driver_success")
	assert.NoError(t, err)
	assert.NotNil(t, db)
}

func TestNewRedis(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		client, err := NewRedis(context.Background(), &config.Config{})
		assert.NoError(t, err)
		assert.Nil(t, client)
	})

	t.Run("Unreachable", func(t *testing.T) {
		client, err := NewRedis(context.Background(), &config.Config{RedisAddr: "127.0.0.1:1"})
		assert.Error(t, err)
		assert.Nil(t, client)
	})
}
