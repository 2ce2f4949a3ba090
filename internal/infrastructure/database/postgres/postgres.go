package postgres

import (
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"github.com/XSAM/otelsql"
	"github.com/alimikegami/astromart/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

var lock = &sync.Mutex{}
var db *sqlx.DB

func GetDBInstance(conf config.PostgreSQLConfig) (*sqlx.DB, error) {
	lock.Lock()
	defer lock.Unlock()

	if db != nil {
		log.Info().Str("component", "GetDBInstance").Msg("instance is already created")
		return db, nil
	}

	sqlDB, err := otelsql.Open("postgres",
		fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			conf.DBHost, conf.DBPort, conf.DBUsername, conf.DBPassword, conf.DBName),
		otelsql.WithAttributes(
			semconv.DBSystemPostgreSQL,
			semconv.DBNameKey.String(conf.DBName),
		),
		otelsql.WithSpanOptions(otelsql.SpanOptions{
			DisableQuery: true,
		}),
	)
	if err != nil {
		return nil, err
	}

	instance := sqlx.NewDb(sqlDB, "postgres")
	if err := instance.Ping(); err != nil {
		return nil, err
	}

	db = instance

	return db, nil
}

// Migrate applies every *.up.sql file in fsys in lexical order. Statements
// are written to be idempotent.
func Migrate(conn *sqlx.DB, fsys fs.FS) error {
	files, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		statement, err := fs.ReadFile(fsys, file)
		if err != nil {
			return err
		}

		if _, err := conn.Exec(string(statement)); err != nil {
			return fmt.Errorf("applying %s: %w", file, err)
		}
		log.Info().Str("component", "Migrate").Str("file", file).Msg("migration applied")
	}

	return nil
}
