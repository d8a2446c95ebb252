package database

import (
	"database/sql"
	"log"
	"time"

	"minijudge/internal/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver
)

// Pool sizing for a single-binary deployment. A submission holds its
// connection for the whole in-request evaluation, so keep headroom.
const (
	maxOpenConns    = 25
	maxIdleConns    = 25
	connMaxLifetime = 5 * time.Minute
)

var DB *sql.DB

func Connect() {
	db, err := sql.Open("pgx", config.AppConfig.DBConnStr)
	if err != nil {
		log.Fatalf("Failed to open database handle: %v", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to reach database: %v", err)
	}

	DB = db
	log.Println("Connected to PostgreSQL.")
}

func Close() {
	if DB != nil {
		DB.Close()
		log.Println("Database connection closed.")
	}
}
