package errors

import (
	"net/http"

	"encore/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// User-related errors
	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"ユーザーが見つかりません",
		"",
	)

	ErrUserAlreadyExists = NewBaseError(
		http.StatusConflict,
		"USER_ALREADY_EXISTS",
		"このメールアドレスは既に登録されています",
		"",
	)

	ErrUserCreationFailed = NewBaseError(
		http.StatusInternalServerError,
		"USER_CREATION_FAILED",
		"ユーザーの作成に失敗しました",
		"",
	)

	ErrUserUpdateFailed = NewBaseError(
		http.StatusInternalServerError,
		"USER_UPDATE_FAILED",
		"ユーザーの更新に失敗しました",
		"",
	)

	ErrUserDeletionFailed = NewBaseError(
		http.StatusInternalServerError,
		"USER_DELETION_FAILED",
		"アカウントの削除に失敗しました",
		"",
	)

	// Authentication-related errors
	ErrAuthNotFound = NewBaseError(
		http.StatusUnauthorized,
		"AUTH_NOT_FOUND",
		"認証情報が見つかりません",
		"",
	)

	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"メールアドレスまたはパスワードが正しくありません",
		"",
	)

	ErrRefreshTokenInvalid = NewBaseError(
		http.StatusUnauthorized,
		"REFRESH_TOKEN_INVALID",
		"無効または期限切れのリフレッシュトークンです",
		"",
	)

	ErrRefreshTokenNotFound = NewBaseError(
		http.StatusNotFound,
		"REFRESH_TOKEN_NOT_FOUND",
		"リフレッシュトークンが見つかりません",
		"",
	)

	ErrRefreshTokenExpired = NewBaseError(
		http.StatusUnauthorized,
		"REFRESH_TOKEN_EXPIRED",
		"リフレッシュトークンの有効期限が切れています",
		"",
	)

	ErrPasswordHashFailed = NewBaseError(
		http.StatusInternalServerError,
		"PASSWORD_HASH_FAILED",
		"パスワードの処理に失敗しました",
		"",
	)

	ErrPasswordTooWeak = NewBaseError(
		http.StatusBadRequest,
		"PASSWORD_TOO_WEAK",
		"パスワードが脆弱です",
		"",
	)

	ErrPasswordForbiddenWords = NewBaseError(
		http.StatusBadRequest,
		"PASSWORD_FORBIDDEN_WORDS",
		"パスワードに使用できない単語が含まれています",
		"",
	)

	// Order-related errors
	ErrOrderNotFound = NewBaseError(
		http.StatusNotFound,
		"ORDER_NOT_FOUND",
		"注文が見つかりません",
		"",
	)

	ErrOrderOwnershipViolation = NewBaseError(
		http.StatusForbidden,
		"ORDER_OWNERSHIP_VIOLATION",
		"この注文にアクセスする権限がありません",
		"",
	)

	ErrOrderCreationFailed = NewBaseError(
		http.StatusInternalServerError,
		"ORDER_CREATION_FAILED",
		"注文の作成に失敗しました",
		"",
	)

	ErrOrderUpdateFailed = NewBaseError(
		http.StatusInternalServerError,
		"ORDER_UPDATE_FAILED",
		"注文の更新に失敗しました",
		"",
	)

	ErrOrderDeletionFailed = NewBaseError(
		http.StatusInternalServerError,
		"ORDER_DELETION_FAILED",
		"注文の削除に失敗しました",
		"",
	)

	ErrDeleteNotConfirmed = NewBaseError(
		http.StatusBadRequest,
		"DELETE_NOT_CONFIRMED",
		"削除の確認が必要です",
		"",
	)

	// Order draft validation errors
	ErrEmptyTheme = NewBaseError(
		http.StatusBadRequest,
		"EMPTY_THEME",
		"曲のテーマを入力してください",
		"",
	)

	ErrNoGenreSelected = NewBaseError(
		http.StatusBadRequest,
		"NO_GENRE_SELECTED",
		"ジャンルを1つ以上選択してください",
		"",
	)

	ErrWrongDelimiter = NewBaseError(
		http.StatusBadRequest,
		"WRONG_DELIMITER",
		"楽器は半角カンマ(,)で区切って入力してください",
		"",
	)

	ErrGenreLimitExceeded = NewBaseError(
		http.StatusBadRequest,
		"GENRE_LIMIT_EXCEEDED",
		"ジャンルは3つまで選択できます",
		"",
	)

	// Profile-related errors
	ErrProfileNotFound = NewBaseError(
		http.StatusNotFound,
		"PROFILE_NOT_FOUND",
		"プロフィールが見つかりません",
		"",
	)

	ErrProfileUpdateFailed = NewBaseError(
		http.StatusInternalServerError,
		"PROFILE_UPDATE_FAILED",
		"プロフィールの更新に失敗しました",
		"",
	)

	// Prompt generation errors
	ErrPromptGenerationFailed = NewBaseError(
		http.StatusBadGateway,
		"PROMPT_GENERATION_FAILED",
		"プロンプトの生成に失敗しました",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"入力内容に誤りがあります",
		"",
	)

	// Transaction-related errors
	ErrTransactionFailed = NewBaseError(
		http.StatusInternalServerError,
		"TRANSACTION_FAILED",
		"データベーストランザクションに失敗しました",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"システムエラーが発生しました",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"アクセスが拒否されました",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"リソースが見つかりません",
		"",
	)

	ErrConflict = NewBaseError(
		http.StatusConflict,
		"CONFLICT",
		"リソースが競合しています",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "データベースの実行に失敗しました"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
