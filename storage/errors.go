package storage

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// 存储层错误定义
var (
	ErrConnectionClosed = errors.New("storage connection is closed")
	ErrUnsupportedEvent = errors.New("unsupported event kind")
)

// StorageError 存储错误类型
type StorageError struct {
	Type    string
	Message string
	Cause   error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// 错误创建函数
func ErrInvalidData(message string) error {
	return &StorageError{
		Type:    "INVALID_DATA",
		Message: message,
	}
}

func ErrConnectionError(message string, cause error) error {
	return &StorageError{
		Type:    "CONNECTION_ERROR",
		Message: message,
		Cause:   cause,
	}
}

func ErrQueryError(message string, cause error) error {
	return &StorageError{
		Type:    "QUERY_ERROR",
		Message: message,
		Cause:   cause,
	}
}

// IsRetryableError 判断错误是否可重试
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var storageErr *StorageError
	if errors.As(err, &storageErr) {
		switch storageErr.Type {
		case "CONNECTION_ERROR", "QUERY_ERROR":
			return true
		default:
			return false
		}
	}

	return errors.Is(err, ErrConnectionClosed)
}
