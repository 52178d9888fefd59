package store

import (
	"errors"
	"fmt"
	"net/http"
)

// Status статус операции хранилища, который различает оркестратор
type Status int

const (
	StatusSuccess Status = iota
	StatusAlreadyExists
	StatusPreconditionFailed
	StatusNotFound
	StatusOtherFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusAlreadyExists:
		return "AlreadyExists"
	case StatusPreconditionFailed:
		return "PreconditionFailed"
	case StatusNotFound:
		return "NotFound"
	default:
		return "OtherFailure"
	}
}

// Sentinel ошибки для errors.Is
var (
	// ErrAlreadyExists документ с таким id уже зафиксирован
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrPreconditionFailed ETag документа изменился
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrNotFound документ не найден
	ErrNotFound = errors.New("resource not found")
)

// StatusError ошибка хранилища с исходным статусом
type StatusError struct {
	Err     error
	Op      string
	Region  string
	Message string
	Status  Status
	Code    int // HTTP код ответа, 0 если запрос не дошел до сервера
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s in region %q: %s (%d): %s", e.Op, e.Region, e.Status, e.Code, msg)
	}
	return fmt.Sprintf("%s in region %q: %s: %s", e.Op, e.Region, e.Status, msg)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Is сопоставляет статус с sentinel ошибками
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrAlreadyExists:
		return e.Status == StatusAlreadyExists
	case ErrPreconditionFailed:
		return e.Status == StatusPreconditionFailed
	case ErrNotFound:
		return e.Status == StatusNotFound
	}
	return false
}

// StatusOf извлекает статус из ошибки. Любая неизвестная ошибка - StatusOtherFailure.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	switch {
	case errors.Is(err, ErrAlreadyExists):
		return StatusAlreadyExists
	case errors.Is(err, ErrPreconditionFailed):
		return StatusPreconditionFailed
	case errors.Is(err, ErrNotFound):
		return StatusNotFound
	}
	return StatusOtherFailure
}

// StatusFromHTTP переводит HTTP код ответа региона в статус
func StatusFromHTTP(code int) Status {
	switch {
	case code >= 200 && code < 300:
		return StatusSuccess
	case code == http.StatusConflict:
		return StatusAlreadyExists
	case code == http.StatusPreconditionFailed:
		return StatusPreconditionFailed
	case code == http.StatusNotFound:
		return StatusNotFound
	default:
		return StatusOtherFailure
	}
}
