package model

type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProjectName 供模糊匹配使用
func ProjectName(p Project) string { return p.Name }
