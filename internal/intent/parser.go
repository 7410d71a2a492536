package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// 表情命令，每个表情后允许一个 U+FE0F 变体选择符
var (
	completeTaskPattern  = regexp.MustCompile(`^✅\x{FE0F}?\s+(.+)`)
	createTaskPattern    = regexp.MustCompile(`^📝\x{FE0F}?\s+([^\[]+)(?:\[([^\]]*)\])?`)
	createProcessPattern = regexp.MustCompile(`^⚙\x{FE0F}?\s+([^\[]+)(?:\[([^\]]*)\])?`)
	ratingPattern        = regexp.MustCompile(`^⭐\x{FE0F}?\s*(\d+)(?:/10)?(?:\s+(.+))?`)
)

// "j'ai fait X", "j'ai fais X", "I did X", "I have done X"
var completionPhrasePattern = regexp.MustCompile(
	`(?i)(?:\bj['’]\s?ai\s+fai[ts]|\bi\s+did|\bi\s+have\s+done|\bi've\s+done)\s+(.+)`)

var itemSeparator = regexp.MustCompile(`(?i)\s*[,;]\s*|\s+(?:et|and)\s+`)

// Parser recognises the explicit command forms. It never calls out.
type Parser struct {
	dates *DateResolver
}

func NewParser(dates *DateResolver) *Parser {
	return &Parser{dates: dates}
}

// Parse tries the command forms in a fixed order and returns the first
// match. ok is false when the text is free-form and needs classification.
func (p *Parser) Parse(text string) (in Intent, source Source, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, "", false
	}

	if m := completeTaskPattern.FindStringSubmatch(text); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			return CompleteItems{
				Items:  []string{name},
				Date:   p.dates.Today(),
				Target: TargetTasks,
			}, SourceCommand, true
		}
	}

	if m := createTaskPattern.FindStringSubmatch(text); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			return CreateTask{Title: title, Options: ParseTaskOptions(m[2])}, SourceCommand, true
		}
	}

	if m := createProcessPattern.FindStringSubmatch(text); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			return CreateProcess{Name: name, Steps: splitSteps(m[2])}, SourceCommand, true
		}
	}

	if m := ratingPattern.FindStringSubmatch(text); m != nil {
		// 超出 0..10 的评分继续往下匹配
		if rating, err := strconv.Atoi(m[1]); err == nil && rating >= 0 && rating <= 10 {
			return RateDay{
				Rating:  rating,
				Comment: strings.TrimSpace(m[2]),
				Date:    p.dates.Today(),
			}, SourceCommand, true
		}
	}

	if m := completionPhrasePattern.FindStringSubmatch(text); m != nil {
		if items := SplitItems(StripDates(m[1])); len(items) > 0 {
			return CompleteItems{
				Items:  items,
				Date:   p.dates.Resolve(text),
				Target: TargetHabits,
			}, SourcePhrase, true
		}
	}

	return nil, "", false
}

// SplitItems splits a completion list on commas, semicolons and the
// conjunctions "et" / "and". Empty pieces are dropped.
func SplitItems(s string) []string {
	var items []string
	for _, part := range itemSeparator.Split(strings.TrimSpace(s), -1) {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

func splitSteps(raw string) []string {
	var steps []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			steps = append(steps, part)
		}
	}
	return steps
}
