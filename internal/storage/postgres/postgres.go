package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/pmarkun/editaisparticipativos/internal/storage/sqlstore"
)

const uniqueViolation = "23505"

type dialect struct{}

func (dialect) Rebind(query string) string {
	return sqlstore.Dollar(query)
}

func (dialect) IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func New(postgresURL string) (*sqlstore.Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", postgresURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return sqlstore.New(db, dialect{}), nil
}
