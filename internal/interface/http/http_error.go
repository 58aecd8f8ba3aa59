package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yanqian/cwa-weatherboard/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// upstreamMessages are the client facing texts for one upstream dataset.
type upstreamMessages struct {
	NoData      string
	Timeout     string
	Unreachable string
	Processing  string
}

var (
	forecastMessages = upstreamMessages{
		NoData:      "找不到預報資料或資料格式不正確。",
		Timeout:     "連接氣象署 API 超時，請稍後再試。",
		Unreachable: "無法連接到氣象署 API 或請求失敗。",
		Processing:  "資料處理發生未知錯誤。",
	}
	cycloneMessages = upstreamMessages{
		NoData:      "找不到熱帶氣旋資料。",
		Timeout:     "連接氣象署熱帶氣旋 API 超時，請稍後再試。",
		Unreachable: "無法連接到氣象署熱帶氣旋 API 或請求失敗。",
		Processing:  "資料處理發生未知錯誤。",
	}
)

// fromAppError maps a pipeline error onto a status and a message that never
// carries upstream content.
func fromAppError(err error, msgs upstreamMessages) *HTTPError {
	code := apperrors.CodeOf(err)
	switch code {
	case apperrors.CodeNoData:
		return NewHTTPError(http.StatusNotFound, code, msgs.NoData, err)
	case apperrors.CodeTimeout:
		return NewHTTPError(http.StatusGatewayTimeout, code, msgs.Timeout, err)
	case apperrors.CodeUpstreamUnreachable:
		return NewHTTPError(http.StatusInternalServerError, code, msgs.Unreachable, err)
	default:
		return NewHTTPError(http.StatusInternalServerError, apperrors.CodeProcessing, msgs.Processing, err)
	}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
