package intent

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"productif-agent/internal/model"
	"productif-agent/pkg/logger"
	"productif-agent/pkg/metrics"
	"productif-agent/pkg/util"
)

// ErrUnavailable is returned by completers that cannot classify at all.
var ErrUnavailable = errors.New("completion service unavailable")

// Completer maps a free-form message to one intent label.
type Completer interface {
	Complete(ctx context.Context, text string) (string, error)
}

// Unavailable is the completer used when no provider is configured.
// Every free-form message degrades to Chat.
type Unavailable struct{}

func (Unavailable) Complete(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

// Label is the vocabulary the completion service answers with.
type Label string

const (
	LabelGetTasks          Label = "GET_TASKS"
	LabelGetHabits         Label = "GET_HABITS"
	LabelGetProcesses      Label = "GET_PROCESSES"
	LabelMarkComplete      Label = "MARK_COMPLETE"
	LabelGetHabitDetails   Label = "GET_HABIT_DETAILS"
	LabelUpdatePreferences Label = "UPDATE_PREFERENCES"
	LabelGetSummary        Label = "GET_SUMMARY"
	LabelCreateTask        Label = "CREATE_TASK"
	LabelCreateHabit       Label = "CREATE_HABIT"
	LabelCreateProcess     Label = "CREATE_PROCESS"
	LabelHelp              Label = "HELP"
	LabelChat              Label = "CHAT"
)

// Labels lists every label, longest first so that containment checks
// prefer GET_HABIT_DETAILS over GET_HABITS.
var Labels = func() []Label {
	all := []Label{
		LabelGetTasks, LabelGetHabits, LabelGetProcesses, LabelMarkComplete,
		LabelGetHabitDetails, LabelUpdatePreferences, LabelGetSummary,
		LabelCreateTask, LabelCreateHabit, LabelCreateProcess, LabelHelp, LabelChat,
	}
	sort.SliceStable(all, func(i, j int) bool { return len(all[i]) > len(all[j]) })
	return all
}()

// Source records which stage produced an intent.
type Source string

const (
	SourceCommand   Source = "command"
	SourcePhrase    Source = "phrase"
	SourceCompleter Source = "completer"
	SourceFallback  Source = "fallback"
)

// Classification is the outcome of Classify.
type Classification struct {
	Intent Intent
	Source Source
	Label  Label // empty unless the completer answered
}

// 补全标签路径上的轻量实体抽取
var (
	markCompleteItemsPattern = regexp.MustCompile(`(?i)\b(?:fait|fais|did|done|termin[ée]e?s?|finished|completed)\s+(.+)`)
	createTaskTitlePattern   = regexp.MustCompile(`(?i)\b(?:t[âa]che|task)\b\s*:?\s*(.+)`)
	createHabitNamePattern   = regexp.MustCompile(`(?i)\b(?:habitude|habit)\b\s*:?\s*(.+)`)
	createProcessNamePattern = regexp.MustCompile(`(?i)\b(?:processus|process)\b\s*:?\s*(.+)`)
	habitDetailsNamePattern  = regexp.MustCompile(
		`(?i)\bd[ée]tails?\s+(?:sur|de|du|of|about|on|for)\s+(?:l['’]\s?habitude\s+|la\s+|le\s+|the\s+habit\s+|the\s+|my\s+|ma\s+|mon\s+)?(.+)`)
	wakeUpPattern      = regexp.MustCompile(`(?i)(?:r[ée]veille|l[èe]ve|wake\s+up|get\s+up)\D{0,12}?(\d{1,2})\s*(?:h|:)\s*(\d{2})?`)
	wakeUpAmPmPattern  = regexp.MustCompile(`(?i)(?:wake\s+up|get\s+up)\D{0,12}?(\d{1,2})\s*(am|pm)`)
	focusPeriodPattern = regexp.MustCompile(`(?i)(?:pr[ée]f[èe]re|prefer)[^.!?]*?\b(matin|apr[èe]s-midi|soir|morning|afternoon|evening)`)
)

var focusPeriods = map[string]string{
	"matin":      "morning",
	"morning":    "morning",
	"après-midi": "afternoon",
	"apres-midi": "afternoon",
	"afternoon":  "afternoon",
	"soir":       "evening",
	"evening":    "evening",
}

// Classifier produces exactly one Intent per message. Explicit forms
// short-circuit; everything else goes through the completer once, bounded by
// timeout, and falls back to Chat on any failure.
type Classifier struct {
	parser    *Parser
	dates     *DateResolver
	completer Completer
	timeout   time.Duration
	logger    *zap.Logger
}

func NewClassifier(completer Completer, dates *DateResolver, timeout time.Duration, logger *zap.Logger) *Classifier {
	if completer == nil {
		completer = Unavailable{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Classifier{
		parser:    NewParser(dates),
		dates:     dates,
		completer: completer,
		timeout:   timeout,
		logger:    logger,
	}
}

func (c *Classifier) Classify(ctx context.Context, text string) Classification {
	result := c.classify(ctx, text)
	metrics.RecordIntent(string(result.Intent.Kind()), string(result.Source))
	return result
}

func (c *Classifier) classify(ctx context.Context, text string) Classification {
	if in, source, ok := c.parser.Parse(text); ok {
		return Classification{Intent: in, Source: source}
	}

	log := logger.WithTrace(ctx, c.logger)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.completer.Complete(callCtx, text)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			log.Debug("no completer configured, falling back to chat")
		} else {
			log.Warn("completer failed, falling back to chat",
				zap.String("error_type", util.ClassifyError(err)),
				zap.Error(err))
		}
		return Classification{Intent: Chat{}, Source: SourceFallback}
	}

	label, ok := ParseLabel(raw)
	if !ok {
		log.Warn("completer returned unknown label", zap.String("label", truncate(raw, 64)))
		return Classification{Intent: Chat{}, Source: SourceFallback}
	}

	return Classification{Intent: c.fromLabel(label, text), Source: SourceCompleter, Label: label}
}

// ParseLabel maps a raw completer answer to a known label. Quotes, spaces and
// punctuation around the label are tolerated, as is surrounding prose that
// contains exactly the label somewhere.
func ParseLabel(raw string) (Label, bool) {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	cleaned = strings.Trim(cleaned, " \t\r\n\"'`.,:;!?*")
	for _, l := range Labels {
		if cleaned == string(l) {
			return l, true
		}
	}
	for _, l := range Labels {
		if strings.Contains(cleaned, string(l)) {
			return l, true
		}
	}
	return "", false
}

func (c *Classifier) fromLabel(label Label, text string) Intent {
	switch label {
	case LabelGetTasks:
		return GetTasks{}
	case LabelGetHabits:
		return GetHabits{}
	case LabelGetProcesses:
		return GetProcesses{}
	case LabelGetSummary:
		return GetSummary{}
	case LabelHelp:
		return Help{}
	case LabelMarkComplete:
		items := SplitItems(StripDates(text))
		if m := markCompleteItemsPattern.FindStringSubmatch(text); m != nil {
			items = SplitItems(StripDates(m[1]))
		}
		return CompleteItems{Items: items, Date: c.dates.Resolve(text), Target: TargetHabits}
	case LabelGetHabitDetails:
		return GetHabitDetails{Name: capture(habitDetailsNamePattern, text)}
	case LabelCreateTask:
		return CreateTask{Title: capture(createTaskTitlePattern, text)}
	case LabelCreateHabit:
		return CreateHabit{Name: capture(createHabitNamePattern, text)}
	case LabelCreateProcess:
		return CreateProcess{Name: capture(createProcessNamePattern, text)}
	case LabelUpdatePreferences:
		return UpdatePreferences{Preferences: extractPreferences(text)}
	default:
		return Chat{}
	}
}

func capture(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(m[1]), " ?!.")
}

func extractPreferences(text string) model.Preferences {
	var prefs model.Preferences
	if m := wakeUpAmPmPattern.FindStringSubmatch(text); m != nil {
		var hour int
		fmt.Sscanf(m[1], "%d", &hour)
		if strings.EqualFold(m[2], "pm") && hour < 12 {
			hour += 12
		}
		if strings.EqualFold(m[2], "am") && hour == 12 {
			hour = 0
		}
		if hour >= 0 && hour <= 23 {
			prefs.WakeUpTime = fmt.Sprintf("%02d:00", hour)
		}
	} else if m := wakeUpPattern.FindStringSubmatch(text); m != nil {
		var hour, minute int
		fmt.Sscanf(m[1], "%d", &hour)
		if m[2] != "" {
			fmt.Sscanf(m[2], "%d", &minute)
		}
		if hour <= 23 && minute <= 59 {
			prefs.WakeUpTime = fmt.Sprintf("%02d:%02d", hour, minute)
		}
	}
	if m := focusPeriodPattern.FindStringSubmatch(text); m != nil {
		prefs.FocusPeriod = focusPeriods[strings.ToLower(m[1])]
	}
	return prefs
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
