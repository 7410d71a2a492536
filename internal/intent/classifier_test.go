package intent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"productif-agent/internal/model"
)

type spyCompleter struct {
	label string
	err   error
	calls int
	texts []string
}

func (s *spyCompleter) Complete(_ context.Context, text string) (string, error) {
	s.calls++
	s.texts = append(s.texts, text)
	return s.label, s.err
}

type blockingCompleter struct{}

func (blockingCompleter) Complete(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func newTestClassifier(t *testing.T, c Completer) *Classifier {
	dates := fixedResolver(time.Date(2025, 6, 18, 9, 0, 0, 0, paris))
	return NewClassifier(c, dates, time.Second, zaptest.NewLogger(t))
}

func TestClassifyExplicitFormsNeverCallCompleter(t *testing.T) {
	spy := &spyCompleter{label: "CHAT"}
	c := newTestClassifier(t, spy)

	messages := []string{
		"✅ Appeler le client",
		"📝 Préparer la démo [p:3]",
		"⚙️ Onboarding [a, b]",
		"⭐ 7/10 bonne journée",
		"j'ai fait méditation et lecture",
		"I did yoga",
	}
	for _, m := range messages {
		result := c.Classify(context.Background(), m)
		assert.NotEqual(t, SourceCompleter, result.Source, m)
		assert.NotEqual(t, KindChat, result.Intent.Kind(), m)
	}
	assert.Zero(t, spy.calls)
}

func TestClassifyFreeFormUsesCompleterOnce(t *testing.T) {
	spy := &spyCompleter{label: "GET_TASKS"}
	c := newTestClassifier(t, spy)

	result := c.Classify(context.Background(), "montre-moi mes tâches")

	assert.Equal(t, GetTasks{}, result.Intent)
	assert.Equal(t, SourceCompleter, result.Source)
	assert.Equal(t, LabelGetTasks, result.Label)
	assert.Equal(t, 1, spy.calls)
	assert.Equal(t, []string{"montre-moi mes tâches"}, spy.texts)
}

func TestClassifyRatingOutOfRangeGoesToCompleter(t *testing.T) {
	spy := &spyCompleter{label: "CHAT"}
	c := newTestClassifier(t, spy)

	result := c.Classify(context.Background(), "⭐ 11")

	assert.Equal(t, Chat{}, result.Intent)
	assert.Equal(t, 1, spy.calls)
}

func TestClassifyFallsBackToChat(t *testing.T) {
	cases := map[string]Completer{
		"error":       &spyCompleter{err: errors.New("boom")},
		"unknown":     &spyCompleter{label: "ORDER_PIZZA"},
		"empty":       &spyCompleter{label: ""},
		"unavailable": Unavailable{},
		"nil":         nil,
	}
	for name, completer := range cases {
		t.Run(name, func(t *testing.T) {
			result := newTestClassifier(t, completer).Classify(context.Background(), "salut")
			assert.Equal(t, Chat{}, result.Intent)
			assert.Equal(t, SourceFallback, result.Source)
		})
	}
}

func TestClassifyCompleterTimeout(t *testing.T) {
	dates := fixedResolver(time.Date(2025, 6, 18, 9, 0, 0, 0, paris))
	c := NewClassifier(blockingCompleter{}, dates, 20*time.Millisecond, zaptest.NewLogger(t))

	start := time.Now()
	result := c.Classify(context.Background(), "quoi de neuf ?")

	assert.Equal(t, Chat{}, result.Intent)
	assert.Equal(t, SourceFallback, result.Source)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestParseLabel(t *testing.T) {
	cases := map[string]Label{
		"GET_TASKS":                     LabelGetTasks,
		"  get_habits  ":                LabelGetHabits,
		`"GET_PROCESSES"`:               LabelGetProcesses,
		"MARK_COMPLETE.":                LabelMarkComplete,
		"Intent: GET_HABIT_DETAILS":     LabelGetHabitDetails,
		"L'intention est GET_SUMMARY !": LabelGetSummary,
		"help":                          LabelHelp,
	}
	for raw, want := range cases {
		got, ok := ParseLabel(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	_, ok := ParseLabel("BANANA")
	assert.False(t, ok)
}

func TestClassifyMarkCompleteLabelExtractsItems(t *testing.T) {
	c := newTestClassifier(t, &spyCompleter{label: "MARK_COMPLETE"})

	result := c.Classify(context.Background(), "hier j'ai terminé lecture et yoga")
	assert.Equal(t, CompleteItems{
		Items:  []string{"lecture", "yoga"},
		Date:   Date{2025, time.June, 17},
		Target: TargetHabits,
	}, result.Intent)

	result = c.Classify(context.Background(), "méditation")
	assert.Equal(t, []string{"méditation"}, result.Intent.(CompleteItems).Items)
}

func TestClassifyExtractsEntitiesForLabels(t *testing.T) {
	cases := []struct {
		label string
		text  string
		want  Intent
	}{
		{"GET_HABIT_DETAILS", "Donne-moi les détails sur l'habitude Méditation ?", GetHabitDetails{Name: "Méditation"}},
		{"GET_HABIT_DETAILS", "show me details about the habit Reading", GetHabitDetails{Name: "Reading"}},
		{"GET_HABIT_DETAILS", "et cette habitude ?", GetHabitDetails{}},
		{"CREATE_TASK", "Crée une tâche : appeler le plombier", CreateTask{Title: "appeler le plombier"}},
		{"CREATE_HABIT", "Nouvelle habitude : boire de l'eau", CreateHabit{Name: "boire de l'eau"}},
		{"UPDATE_PREFERENCES", "Je me réveille à 6h30 et je préfère le matin",
			UpdatePreferences{Preferences: prefs("06:30", "morning")}},
		{"UPDATE_PREFERENCES", "I wake up at 7am and prefer the afternoon",
			UpdatePreferences{Preferences: prefs("07:00", "afternoon")}},
		{"GET_SUMMARY", "résumé stp", GetSummary{}},
		{"HELP", "aide", Help{}},
	}
	for _, tc := range cases {
		c := newTestClassifier(t, &spyCompleter{label: tc.label})
		result := c.Classify(context.Background(), tc.text)
		assert.Equal(t, tc.want, result.Intent, tc.text)
	}
}

func prefs(wake, focus string) model.Preferences {
	return model.Preferences{WakeUpTime: wake, FocusPeriod: focus}
}
