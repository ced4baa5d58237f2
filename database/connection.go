// backend/database/connection.go
package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql" // MariaDB/MySQL driver

	"github.com/gewnthar/presupuesto/backend/config"
)

// Store persists budget snapshots and fetch history in MySQL.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open initializes the database connection pool and verifies it with a ping.
func Open(cfg config.DatabaseConfig) (*sql.DB, error) {
	// DSN: username:password@protocol(address)/dbname?param=value
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
	)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database: Successfully connected to the database!")
	return db, nil
}

// Ping checks that the database still answers.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
		log.Println("Database: Connection closed.")
	}
}
