package storage

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	ErrInvalidConfig = errors.New("storage: invalid configuration")
	ErrEmptyFile     = errors.New("storage: file is empty")

	ErrNotFound     = errors.New("storage: file not found")
	ErrAccessDenied = errors.New("storage: access denied")
	ErrUploadFailed = errors.New("storage: upload failed")
	ErrDeleteFailed = errors.New("storage: delete failed")
	ErrListFailed   = errors.New("storage: list failed")
	ErrMoveFailed   = errors.New("storage: move failed")
)

// apiCodes maps S3 error codes to the sentinel reported instead of the
// operation's own failure.
var apiCodes = map[string]error{
	"NoSuchKey":    ErrNotFound,
	"NotFound":     ErrNotFound,
	"NoSuchBucket": ErrNotFound,
	"AccessDenied": ErrAccessDenied,
	"Forbidden":    ErrAccessDenied,
}

// OpError is an S3 failure for one key. errors.Is matches Kind, and the
// SDK error stays reachable through errors.As.
type OpError struct {
	Kind error
	Err  error
	Op   string
	Key  string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s %s %q: %v", e.Kind, e.Op, e.Key, e.Err)
}

func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// s3Error classifies err from op on key. Unrecognized errors get fallback.
func s3Error(op, key string, err, fallback error) error {
	kind := fallback

	var apiErr smithy.APIError
	var noSuchKey *types.NoSuchKey
	switch {
	case errors.As(err, &noSuchKey):
		kind = ErrNotFound
	case errors.As(err, &apiErr):
		if k, ok := apiCodes[apiErr.ErrorCode()]; ok {
			kind = k
		}
	}
	return &OpError{Kind: kind, Err: err, Op: op, Key: key}
}
