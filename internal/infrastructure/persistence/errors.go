package persistence

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translateError maps driver errors onto domain errors. Unique and foreign key
// violations become conflicts carrying msg; anything else is returned as is.
func translateError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return shared.NewConflictError(msg)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgForeignKeyViolation:
			return shared.NewConflictError(msg)
		}
	}
	return err
}
