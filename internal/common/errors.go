package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// UserMessage is the short Russian text shown to the end user.
func (e *AppError) UserMessage() string {
	if msg, ok := userMessages[e.Code]; ok {
		return msg
	}
	return userMessages[CodeInternal]
}

const (
	CodeExtractionFailed    = "EXTRACTION_FAILED"
	CodeDialectUnrecognized = "DIALECT_UNRECOGNIZED"
	CodeFieldUnextractable  = "FIELD_UNEXTRACTABLE"
	CodeTotalsMismatch      = "TOTALS_MISMATCH"
	CodeCalculator          = "CALCULATOR_ERROR"
	CodeConfig              = "CONFIG_ERROR"
	CodeInternal            = "INTERNAL"
)

var userMessages = map[string]string{
	CodeExtractionFailed:    "Не удалось прочитать PDF-файл. Проверьте, что загружен кредитный отчёт.",
	CodeDialectUnrecognized: "Формат отчёта не распознан, данные могут быть неполными.",
	CodeFieldUnextractable:  "Некоторые поля договора не удалось прочитать.",
	CodeTotalsMismatch:      "Итоговые суммы отчёта расходятся с суммой по договорам.",
	CodeCalculator:          "Не удалось рассчитать рекомендацию по отчёту.",
	CodeConfig:              "Ошибка конфигурации сервиса.",
	CodeInternal:            "Внутренняя ошибка. Попробуйте позже.",
}

// Common application errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInternal            = errors.New("internal error")
	ErrDatabase            = errors.New("database error")
	ErrValidation          = errors.New("validation failed")
	ErrExtractionFailed    = errors.New("extraction failed")
	ErrDialectUnrecognized = errors.New("dialect unrecognized")
	ErrFieldUnextractable  = errors.New("field unextractable")
	ErrTotalsMismatch      = errors.New("totals mismatch")
	ErrCalculator          = errors.New("calculator error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func ExtractionFailed(message string, cause error) *AppError {
	if cause == nil {
		cause = ErrExtractionFailed
	} else {
		cause = fmt.Errorf("%w: %w", ErrExtractionFailed, cause)
	}
	return NewAppError(CodeExtractionFailed, message, cause)
}

func CalculatorError(message string) *AppError {
	return NewAppError(CodeCalculator, message, ErrCalculator)
}

// UserMessageOf returns the Russian message for any error, falling back to the internal one.
func UserMessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.UserMessage()
	}
	return userMessages[CodeInternal]
}
