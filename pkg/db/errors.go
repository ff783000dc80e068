package db

import "errors"

var (
	ErrFailedToParseDBConfig    = errors.New("db: invalid connection settings")
	ErrFailedToOpenDBConnection = errors.New("db: postgres unreachable")
	ErrHealthcheckFailed        = errors.New("db: ping failed")
	ErrSetDialect               = errors.New("db: goose dialect")
	ErrApplyMigrations          = errors.New("db: migrations failed")
	ErrUnknownDirection         = errors.New("db: unknown migration direction")
	ErrRollback                 = errors.New("db: rollback failed")
)
