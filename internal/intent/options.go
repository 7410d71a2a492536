package intent

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	DefaultPriority    = 2
	DefaultEnergyLevel = 1
)

// TaskOptions are the optional fields of a 📝 command. Nil or empty means the
// user did not give a valid value for that key.
type TaskOptions struct {
	Priority    *int   // 1..4
	EnergyLevel *int   // 0..3
	DueDate     string // YYYY-MM-DD
	ProjectName string
}

// PriorityOrDefault returns the priority to send to the Domain API.
func (o TaskOptions) PriorityOrDefault() int {
	if o.Priority != nil {
		return *o.Priority
	}
	return DefaultPriority
}

// EnergyOrDefault returns the energy level to send to the Domain API.
func (o TaskOptions) EnergyOrDefault() int {
	if o.EnergyLevel != nil {
		return *o.EnergyLevel
	}
	return DefaultEnergyLevel
}

var dueDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseTaskOptions reads a comma separated list of key:value pairs such as
// "p:3,e:1,d:2025-06-16,projet:Launch". Unknown keys are ignored, and values
// that are out of range or malformed are dropped rather than defaulted.
func ParseTaskOptions(raw string) TaskOptions {
	var opts TaskOptions
	for _, part := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "p":
			if n, ok := intInRange(value, 1, 4); ok {
				opts.Priority = &n
			}
		case "e":
			if n, ok := intInRange(value, 0, 3); ok {
				opts.EnergyLevel = &n
			}
		case "d":
			if dueDatePattern.MatchString(value) {
				opts.DueDate = value
			}
		case "projet", "project":
			opts.ProjectName = value
		}
	}
	return opts
}

func intInRange(s string, lo, hi int) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, false
	}
	return n, true
}
