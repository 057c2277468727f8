package db

import "errors"

var (
	ErrParseConfig = errors.New("db: invalid connection string")
	ErrConnect     = errors.New("db: cannot connect")
	ErrUnhealthy   = errors.New("db: ping failed")
	ErrMigrate     = errors.New("db: migration failed")
	ErrTransaction = errors.New("db: transaction failed")
)
