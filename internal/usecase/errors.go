package usecase

import (
	"errors"
	"fmt"
	"strings"
)

// エラー分類。ハンドラ側でHTTPステータスへ写像する。

// 入力不正。Fieldsに問題のあった項目を全部入れて返す。
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// 対象が存在しない
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func AsNotFoundError(err error) (*NotFoundError, bool) {
	var ne *NotFoundError
	ok := errors.As(err, &ne)
	return ne, ok
}

// ステータスマシン違反（後退・終端からの遷移など）
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s", e.From, e.To)
}

func AsInvalidTransitionError(err error) (*InvalidTransitionError, bool) {
	var te *InvalidTransitionError
	ok := errors.As(err, &te)
	return te, ok
}

// 署名・金額不一致。障害ではなく「未確定」という業務上の結果。
type VerificationFailure struct {
	Reason string
}

func (e *VerificationFailure) Error() string {
	return "payment not verified: " + e.Reason
}

func AsVerificationFailure(err error) (*VerificationFailure, bool) {
	var vf *VerificationFailure
	ok := errors.As(err, &vf)
	return vf, ok
}

// コラボレーター到達不能・タイムアウト。呼び出し側でリトライ可。
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error in %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func AsNetworkError(err error) (*NetworkError, bool) {
	var ne *NetworkError
	ok := errors.As(err, &ne)
	return ne, ok
}

// 冪等ガードに当たった。無視して安全。
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

func AsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	ok := errors.As(err, &ce)
	return ce, ok
}

// 合計0円のカートはチェックアウトできない
type EmptyCartError struct{}

func (e *EmptyCartError) Error() string {
	return "cart is empty"
}

func AsEmptyCartError(err error) (*EmptyCartError, bool) {
	var ee *EmptyCartError
	ok := errors.As(err, &ee)
	return ee, ok
}

// サイズ未選択・商品のサイズ集合にないサイズ
type InvalidSizeError struct {
	Size string
}

func (e *InvalidSizeError) Error() string {
	if e.Size == "" {
		return "size not selected"
	}
	return "invalid size: " + e.Size
}

func AsInvalidSizeError(err error) (*InvalidSizeError, bool) {
	var ie *InvalidSizeError
	ok := errors.As(err, &ie)
	return ie, ok
}
