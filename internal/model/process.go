package model

import (
	"encoding/json"
	"strings"
)

// Process 是一个可重复执行的步骤清单，步骤以 JSON 存在 description 中
type Process struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Stats       *ProcessStats `json:"stats,omitempty"`
}

type ProcessStats struct {
	CompletionPercentage int `json:"completionPercentage"`
	TotalTasks           int `json:"totalTasks"`
	CompletedTasks       int `json:"completedTasks"`
}

// ProcessStep 清单中的一步
type ProcessStep struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Completed  bool          `json:"completed"`
	IsExpanded bool          `json:"isExpanded"`
	SubSteps   []ProcessStep `json:"subSteps"`
}

// Steps 解析 description 中的清单；description 不是 JSON 数组时 ok 为 false
func (p Process) Steps() ([]ProcessStep, bool) {
	desc := strings.TrimSpace(p.Description)
	if !strings.HasPrefix(desc, "[") {
		return nil, false
	}
	var steps []ProcessStep
	if err := json.Unmarshal([]byte(desc), &steps); err != nil {
		return nil, false
	}
	return steps, true
}

// NewProcess POST /api/processes/agent 的请求体
type NewProcess struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
