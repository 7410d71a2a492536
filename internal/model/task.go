package model

import "time"

type Task struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Completed   bool        `json:"completed"`
	Priority    int         `json:"priority,omitempty"`    // 1..4
	EnergyLevel int         `json:"energyLevel,omitempty"` // 0..3
	DueDate     string      `json:"dueDate,omitempty"`     // RFC3339 或 YYYY-MM-DD
	Project     *ProjectRef `json:"project,omitempty"`
}

// ProjectRef 任务上内嵌的项目
type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskTitle 供模糊匹配使用
func TaskTitle(t Task) string { return t.Title }

// Due 解析截止日期，无法解析时返回零值和 false
func (t Task) Due() (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if d, err := time.Parse(layout, t.DueDate); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// NewTask POST /api/tasks/agent 的请求体
type NewTask struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    int     `json:"priority"`
	EnergyLevel int     `json:"energyLevel"`
	DueDate     *string `json:"dueDate"`
	ProjectID   *string `json:"projectId"`
}
