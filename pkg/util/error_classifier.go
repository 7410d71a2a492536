package util

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/url"
)

// statusCoder 由携带 HTTP 状态码的错误实现
type statusCoder interface {
	StatusCode() int
}

// ClassifyError 将错误归类为一个稳定的短标签，用于指标和日志
func ClassifyError(err error) string {
	if err == nil {
		return "ok"
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}

	// 上游 HTTP 状态码
	var sc statusCoder
	if errors.As(err, &sc) {
		switch code := sc.StatusCode(); {
		case code == 401 || code == 403:
			return "unauthorized"
		case code >= 500:
			return "api_5xx"
		case code >= 400:
			return "api_4xx"
		}
	}

	// JSON 解码错误 - 数据格式错误
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return "decode_error"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "timeout"
		}
		return "network_error"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return "network_error"
	}

	return "unknown_error"
}

// IsRetryable 网络错误、超时和 5xx 可以由调用方重试
func IsRetryable(err error) bool {
	switch ClassifyError(err) {
	case "timeout", "network_error", "api_5xx":
		return true
	default:
		return false
	}
}
