package app

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/guttosm/bpipulse/config"
)

func testPostgresConfig() config.Config {
	return config.Config{Postgres: config.PostgresConfig{User: "u", Password: "p", Host: "h", Port: 5432, DBName: "d", SSLMode: "disable"}}
}

func TestInitPostgres_OpenError(t *testing.T) {
	old := sqlOpener
	sqlOpener = func(driverName, dataSourceName string) (*sql.DB, error) {
		return nil, errors.New("open failed")
	}
	t.Cleanup(func() { sqlOpener = old })

	if _, err := InitPostgres(testPostgresConfig()); err == nil {
		t.Fatalf("expected error from InitPostgres when open fails")
	}
}

func TestInitPostgres_PingError(t *testing.T) {
	old := sqlOpener
	sqlOpener = func(driverName, dataSourceName string) (*sql.DB, error) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		if err != nil {
			t.Fatalf("sqlmock new: %v", err)
		}
		mock.ExpectPing().WillReturnError(errors.New("ping failed"))
		mock.ExpectClose()
		return db, nil
	}
	t.Cleanup(func() { sqlOpener = old })

	if _, err := InitPostgres(testPostgresConfig()); err == nil {
		t.Fatalf("expected ping error from InitPostgres")
	}
}

func TestInitPostgres_UsesConfigDSN(t *testing.T) {
	var gotDriver, gotDSN string
	old := sqlOpener
	sqlOpener = func(driverName, dataSourceName string) (*sql.DB, error) {
		gotDriver, gotDSN = driverName, dataSourceName
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		if err != nil {
			t.Fatalf("sqlmock new: %v", err)
		}
		mock.ExpectPing()
		return db, nil
	}
	t.Cleanup(func() { sqlOpener = old })

	cfg := testPostgresConfig()
	db, err := InitPostgres(cfg)
	if err != nil {
		t.Fatalf("InitPostgres: %v", err)
	}
	_ = db.Close()
	if gotDriver != "postgres" || gotDSN != config.DSN(cfg.Postgres) {
		t.Fatalf("driver=%q dsn=%q", gotDriver, gotDSN)
	}
}
