package mq

import "time"

// 路由键
const (
	RoutingDispatchCompleted    = "agent.dispatch.completed"
	RoutingSessionAuthenticated = "agent.session.authenticated"
)

// DispatchCompletedPayload 每条消息分发结束后发布一次
type DispatchCompletedPayload struct {
	TraceID     string    `json:"trace_id"`
	MessageID   string    `json:"message_id,omitempty"`
	User        string    `json:"user"` // 只保留号码末四位
	Intent      string    `json:"intent"`
	Source      string    `json:"source"` // command / phrase / completer / fallback
	Succeeded   int       `json:"succeeded"`
	NotFound    int       `json:"not_found"`
	AlreadyDone int       `json:"already_done"`
	Failed      int       `json:"failed"`
	Error       string    `json:"error,omitempty"` // 错误分类，不含原始信息
	CompletedAt time.Time `json:"completed_at"`
}

// SessionAuthenticatedPayload 用户首次提交有效凭证时发布
type SessionAuthenticatedPayload struct {
	TraceID         string    `json:"trace_id"`
	User            string    `json:"user"`
	AuthenticatedAt time.Time `json:"authenticated_at"`
}
