package handler

import (
	"errors"
	"net/http"

	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// usecaseのエラー分類をHTTPステータスへ写像する。
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	if ve, ok := usecase.AsValidationError(err); ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: ve.Error(), Fields: ve.Fields})
	}
	if ie, ok := usecase.AsInvalidSizeError(err); ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: ie.Error()})
	}
	if _, ok := usecase.AsEmptyCartError(err); ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cart is empty"})
	}
	if ne, ok := usecase.AsNotFoundError(err); ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: ne.Error()})
	}
	if te, ok := usecase.AsInvalidTransitionError(err); ok {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: te.Error()})
	}
	if ce, ok := usecase.AsConflictError(err); ok {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: ce.Error()})
	}
	if vf, ok := usecase.AsVerificationFailure(err); ok {
		//障害ではなく未確定という結果なので4xx
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: vf.Error()})
	}
	if ne, ok := usecase.AsNetworkError(err); ok {
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: ne.Error()})
	}
	if errors.Is(err, usecase.ErrInvalidCredentials) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
	}

	//500
	log.WithError(err).Error("unhandled error")
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// contextからuser_id（uuid文字列）を取り出す
func getUserIDFromContext(c echo.Context) (string, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	if v == nil {
		return "", false
	}

	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}

	return id, true
}
