package utils

import (
	stderrors "errors"
	"net/http"

	"github.com/787516/Matrimonial/pkg/errors"
	"github.com/787516/Matrimonial/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

const codeOK = "OK"

// SuccessResponse replies 200 with data
func SuccessResponse(c *gin.Context, data interface{}) {
	SuccessWithMessage(c, "success", data)
}

// SuccessWithMessage replies 200 with a custom message
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: codeOK, Message: message, Data: data})
}

// Created replies 201
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: codeOK, Message: message, Data: data})
}

// ErrorResponse replies with an explicit status and code
func ErrorResponse(c *gin.Context, httpStatus int, code, message string) {
	c.AbortWithStatusJSON(httpStatus, Response{Code: code, Message: message})
}

func BadRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, errors.ErrCodeValidation, message)
}

func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, errors.ErrCodeUnauthorized, message)
}

func TooManyRequests(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusTooManyRequests, errors.ErrCodeRateLimitExceeded, message)
}

func InternalServerError(c *gin.Context) {
	ErrorResponse(c, http.StatusInternalServerError, errors.ErrCodeInternalError, "internal server error")
}

// Error replies with the status matching err's code. Internal errors are
// logged and replaced by a generic message.
func Error(c *gin.Context, err error) {
	code := errors.CodeOf(err)
	status := HTTPStatus(code)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.FullPath(), "request_id", c.GetString("request_id"), "error", err)
		InternalServerError(c)
		return
	}

	message := err.Error()
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		message = appErr.Message
	}
	ErrorResponse(c, status, code, message)
}

// HTTPStatus maps an error code to its HTTP status.
func HTTPStatus(code string) int {
	switch code {
	case errors.ErrCodeValidation, errors.ErrCodeSelfReference:
		return http.StatusBadRequest
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeForbidden, errors.ErrCodeBlocked, errors.ErrCodeNotEntitled:
		return http.StatusForbidden
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeAlreadyExists:
		return http.StatusConflict
	case errors.ErrCodePrecondition:
		return http.StatusPreconditionFailed
	case errors.ErrCodeInvalidTransition:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeRateLimitExceeded, errors.ErrCodeQuotaExceeded:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}
