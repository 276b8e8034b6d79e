package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the store reacts to.
const (
	codeUniqueViolation = "23505"
	codeUndefinedTable  = "42P01"
)

func pgErrCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func isUniqueViolation(err error) bool {
	return pgErrCode(err, codeUniqueViolation)
}

func isUndefinedTable(err error) bool {
	return pgErrCode(err, codeUndefinedTable)
}
