package store

import "errors"

var (
	ErrRecordNotFound  = errors.New("record not found")
	ErrJobDirVanished  = errors.New("job directory vanished")
	ErrInvalidJobDir   = errors.New("job path is not a directory")
	ErrInvalidFilename = errors.New("invalid filename")
)
