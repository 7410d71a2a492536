package reply

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"productif-agent/internal/dispatch"
	"productif-agent/internal/intent"
	"productif-agent/internal/model"
	"productif-agent/internal/productif"
)

var today = intent.Date{Year: 2025, Month: time.June, Day: 18}

func TestFormatHabitBatch(t *testing.T) {
	res := dispatch.Result{
		Intent: intent.CompleteItems{Items: []string{"meditation", "NonexistentHabit", "lecture"}, Date: today},
		Outcome: dispatch.Outcome{
			Succeeded: []string{"Méditation"},
			NotFound:  []string{"NonexistentHabit"},
			Errors:    []dispatch.ItemError{{Term: "lecture", Cause: &productif.APIError{Status: 502}}},
		},
	}

	out := Format(res, nil)
	assert.Equal(t, "✅ Habitudes marquées comme terminées :\n"+
		"• Méditation\n"+
		"\n❌ Habitudes non trouvées :\n"+
		"• NonexistentHabit\n"+
		"\n⚠️ Non enregistrées, veuillez réessayer :\n"+
		"• lecture : service momentanément indisponible", out)
	assert.NotContains(t, out, "502")
}

func TestFormatEmptyOutcome(t *testing.T) {
	res := dispatch.Result{Intent: intent.CompleteItems{Items: []string{"x"}}}
	assert.Equal(t, NothingDone, Format(res, nil))
}

func TestFormatTaskAlreadyDone(t *testing.T) {
	res := dispatch.Result{
		Intent:  intent.CompleteItems{Items: []string{"Appeler"}, Target: intent.TargetTasks},
		Outcome: dispatch.Outcome{AlreadyDone: []string{"Appeler le client"}},
	}
	assert.Equal(t, "☑️ Déjà marquées comme terminées :\n• Appeler le client", Format(res, nil))
}

func TestFormatTaskNotFoundListsOpenTasks(t *testing.T) {
	res := dispatch.Result{
		Intent:  intent.CompleteItems{Items: []string{"xyz"}, Target: intent.TargetTasks},
		Outcome: dispatch.Outcome{NotFound: []string{"xyz"}},
		Tasks:   []model.Task{{Title: "Préparer la démo"}, {Title: "Appeler le client"}},
	}
	out := Format(res, nil)
	assert.Contains(t, out, "❌ Tâches non trouvées :\n• xyz")
	assert.Contains(t, out, "Voici vos tâches actuelles :\n⬜ Préparer la démo\n⬜ Appeler le client")
}

func TestFormatErrorsArePolite(t *testing.T) {
	apiDown := fmt.Errorf("%w: %w", dispatch.ErrExternalAPI, &productif.APIError{Status: 503, Path: "/api/tasks/agent"})
	refused := fmt.Errorf("%w: %w", dispatch.ErrExternalAPI, &productif.APIError{Status: 401, Path: "/api/tasks/agent"})

	cases := []struct {
		name string
		res  dispatch.Result
		err  error
		want string
	}{
		{"auth", dispatch.Result{Intent: intent.GetTasks{}}, dispatch.ErrAuthenticationRequired, AuthPrompt},
		{"api down", dispatch.Result{Intent: intent.GetProcesses{}}, apiDown,
			"Une erreur est survenue lors de la récupération des processus. Veuillez réessayer."},
		{"credential refused", dispatch.Result{Intent: intent.GetTasks{}}, refused, CredentialKO},
		{"not found", dispatch.Result{Intent: intent.GetHabitDetails{Name: "Yoga"}, Term: "Yoga"}, dispatch.ErrNoMatchFound,
			"Je ne trouve pas d'habitude nommée \"Yoga\". Vérifiez le nom et réessayez."},
		{"unknown", dispatch.Result{Intent: intent.GetTasks{}}, errors.New("kaboom"), GenericError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := Format(tc.res, tc.err)
			assert.Equal(t, tc.want, out)
			assert.NotContains(t, out, "503")
			assert.NotContains(t, out, "kaboom")
		})
	}
}

func TestFormatMissingEntityAsksToRephrase(t *testing.T) {
	out := Format(dispatch.Result{Intent: intent.CreateTask{}}, dispatch.ErrMissingEntity)
	assert.True(t, strings.HasPrefix(out, "Quel est le titre de la tâche ?"))
}

func TestFormatTasksGroupsAndSorts(t *testing.T) {
	launch := &model.ProjectRef{ID: "p1", Name: "Lancement"}
	tasks := []model.Task{
		{Title: "Fini", Completed: true, Priority: 4, Project: launch},
		{Title: "Bas", Priority: 1, Project: launch},
		{Title: "Courses"},
		{Title: "Urgent", Priority: 3, DueDate: "2025-06-20", Project: launch},
	}

	assert.Equal(t, "📋 Voici vos tâches :\n\n"+
		"📁 Lancement :\n"+
		"⬜ Urgent 🔥🔥🔥 (📅 20/06/2025)\n"+
		"⬜ Bas 🔥\n"+
		"✅ Fini 🔥🔥🔥🔥\n"+
		"\n📁 Sans projet :\n"+
		"⬜ Courses", FormatTasks(tasks))
}

func TestFormatEmptyCollectionsOnboard(t *testing.T) {
	assert.Contains(t, FormatTasks(nil), "Voulez-vous en créer une ?")
	assert.Contains(t, FormatHabits(nil), "Voulez-vous en créer une ?")
	assert.Contains(t, FormatProcesses(nil), "⚙️")
}

func TestFormatHabits(t *testing.T) {
	habits := []model.Habit{
		{Name: "Méditation", Completed: true, CurrentStreak: 5, Frequency: "daily"},
		{Name: "Sport", Category: "Santé", DaysOfWeek: []string{"friday", "monday"}},
	}
	out := FormatHabits(habits)
	assert.Contains(t, out, "Mes Habitudes:\n• Méditation ✅ 🔥 5j\n  ↳ Tous les jours\n")
	assert.Contains(t, out, "Santé:\n• Sport ⏳\n  ↳ Lundi, Vendredi\n")
}

func TestFormatProcessesParsesChecklist(t *testing.T) {
	processes := []model.Process{
		{
			Name:        "Onboarding",
			Description: `[{"id":"a","title":"Contrat","completed":true,"subSteps":[{"id":"b","title":"Signature","completed":false}]},{"id":"c","title":"Accès","completed":false}]`,
			Stats:       &model.ProcessStats{CompletionPercentage: 50, TotalTasks: 2, CompletedTasks: 1},
		},
		{Name: "Libre", Description: "texte simple"},
	}
	out := FormatProcesses(processes)
	assert.Contains(t, out, "📌 Onboarding\n   ☑️ Contrat\n      ⬜ Signature\n   ⬜ Accès\n   Progression : 50% (1/2 tâches)")
	assert.Contains(t, out, "📌 Libre\n   texte simple\n   Progression : 0% (0/0 tâches)")
}

func TestFormatCreatedTask(t *testing.T) {
	res := dispatch.Result{
		Intent:      intent.CreateTask{Title: "Démo"},
		CreatedTask: &model.Task{Title: "Démo", Priority: 2, EnergyLevel: 1, DueDate: "2025-06-20T00:00:00Z"},
		ProjectName: "Lancement",
	}
	assert.Equal(t, "✅ J'ai créé la tâche \"Démo\" pour vous.\n"+
		"Priorité : 2/4\n"+
		"Niveau d'énergie : 1/3\n"+
		"Date d'échéance : 20/06/2025\n"+
		"Projet : Lancement", Format(res, nil))
}

func TestFormatRating(t *testing.T) {
	res := dispatch.Result{
		Intent:  intent.RateDay{Rating: 10, Comment: "great day", Date: today},
		Outcome: dispatch.Outcome{Succeeded: []string{"Note de sa journée"}},
	}
	assert.Equal(t, "⭐ Note de la journée enregistrée : 10/10\n📝 great day", Format(res, nil))

	res.Outcome = dispatch.Outcome{NotFound: []string{"Note de sa journée"}}
	assert.Contains(t, Format(res, nil), "\"Note de sa journée\"")
}

func TestFormatSummary(t *testing.T) {
	out := FormatSummary(
		[]model.Task{{Title: "A"}, {Title: "B", Completed: true}},
		[]model.Habit{{Name: "Sport", Completed: true}},
	)
	assert.Contains(t, out, "🎯 Tâches en cours :\n- A\n")
	assert.NotContains(t, out, "- B")
	assert.Contains(t, out, "Toutes vos habitudes sont faites aujourd'hui")
}

func TestFormatHelpAndChat(t *testing.T) {
	assert.Equal(t, Help, Format(dispatch.Result{Intent: intent.Help{}}, nil))
	assert.Equal(t, Chat, Format(dispatch.Result{Intent: intent.Chat{}}, nil))
}
