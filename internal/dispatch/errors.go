package dispatch

import (
	"errors"

	"productif-agent/internal/intent"
)

var (
	// ErrAuthenticationRequired 会话未认证时，除 Help/Chat 外的意图都会返回它
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrInvalidCredential Domain API 拒绝了用户提交的凭证
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrNoMatchFound 单个名称没有匹配到任何实体
	ErrNoMatchFound = errors.New("no match found")
	// ErrExternalAPI 包装 Domain API 的失败，原始错误仍可通过 errors.As 取出
	ErrExternalAPI = errors.New("external api failure")
	// ErrClassifierUnavailable 补全服务不可用
	ErrClassifierUnavailable = intent.ErrUnavailable
	// ErrMissingEntity 意图识别出来了，但缺少必要的名称或字段
	ErrMissingEntity = errors.New("missing entity")
)
