// Package pdf はレポートの結合・暗号化・配信パイプラインを提供します。
package pdf

import "fmt"

// Error はAPIエラーコードと利用者向けメッセージを持つエラーです。
type Error struct {
	Code    string
	Message string
	cause   error
}

// Error は error インターフェースを実装します。
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap はラップされた原因エラーを返します。
func (e *Error) Unwrap() error {
	return e.cause
}

func newError(code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}
