package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// usecase共通のエラー。呼び出し側はerrors.Isで判別できる。
var (
	// 数量が1未満
	ErrInvalidQuantity = NewHTTPError(http.StatusBadRequest, "invalid quantity")
	// カート明細が無い
	ErrLineNotFound = NewHTTPError(http.StatusNotFound, "not found")
	// カート内の商品がカタログに無い（表示も確定も中断する）
	ErrProductNotFound = NewHTTPError(http.StatusConflict, "product not found")
	// 空のカートはcheckoutできない
	ErrEmptyCart = NewHTTPError(http.StatusBadRequest, "cart empty")
	// 永続化の失敗。部分的なcommitは残っていない。
	ErrStorage = NewHTTPError(http.StatusInternalServerError, "db error")

	ErrUnauthorized = NewHTTPError(http.StatusUnauthorized, "unauthorized")
)
