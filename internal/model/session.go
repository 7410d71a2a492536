package model

import "time"

// InboundMessage 一次 webhook 投递中的一条文本消息
type InboundMessage struct {
	ID         string
	UserID     string
	Text       string
	ReceivedAt time.Time
}

// Preferences 用户在对话中声明的偏好
type Preferences struct {
	WakeUpTime  string `json:"wakeUpTime,omitempty"`  // HH:MM
	FocusPeriod string `json:"focusPeriod,omitempty"` // morning / afternoon / evening
}

func (p Preferences) IsEmpty() bool {
	return p.WakeUpTime == "" && p.FocusPeriod == ""
}

// Session 每个 WhatsApp 用户的会话状态。Authenticated 只会从 false 变为 true。
type Session struct {
	UserID        string      `json:"userId"`
	Credential    string      `json:"credential,omitempty"`
	Authenticated bool        `json:"authenticated"`
	Preferences   Preferences `json:"preferences"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Authenticate 记录一次验证通过的凭证
func (s *Session) Authenticate(credential string, at time.Time) {
	s.Credential = credential
	s.Authenticated = true
	s.UpdatedAt = at
}
