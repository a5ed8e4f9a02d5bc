package ingesting

import "errors"

var (
	ErrMissingFile      = errors.New("file is required")
	ErrMissingPeriod    = errors.New("month is required")
	ErrProcessingFailed = errors.New("failed to process file")
	ErrRecordNotFound   = errors.New("record not found")
	ErrStoreFailure     = errors.New("record store failure")
)
