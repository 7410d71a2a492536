// Package reply renders dispatch results as a single French chat message.
// Everything here is a pure function of its inputs.
package reply

import (
	"errors"
	"fmt"
	"strings"

	"productif-agent/internal/dispatch"
	"productif-agent/internal/intent"
	"productif-agent/internal/model"
	"productif-agent/internal/productif"
	"productif-agent/pkg/util"
)

// Format renders the result of one dispatch. err is the error returned by
// the dispatcher, if any; raw errors are never shown to the user.
func Format(res dispatch.Result, err error) string {
	if err != nil {
		return formatError(res, err)
	}

	switch v := res.Intent.(type) {
	case intent.CompleteItems:
		if v.Target == intent.TargetTasks {
			return formatTaskCompletion(res)
		}
		return formatHabitCompletion(res.Outcome)
	case intent.RateDay:
		return formatRating(v, res.Outcome)
	case intent.CreateTask:
		return formatCreatedTask(res)
	case intent.CreateHabit:
		return formatCreatedHabit(res.CreatedHabit)
	case intent.CreateProcess:
		return formatCreatedProcess(res)
	case intent.UpdatePreferences:
		return formatPreferences(res.Preferences)
	case intent.GetTasks:
		return FormatTasks(res.Tasks)
	case intent.GetHabits:
		return FormatHabits(res.Habits)
	case intent.GetProcesses:
		return FormatProcesses(res.Processes)
	case intent.GetHabitDetails:
		return FormatHabitDetails(res.Habit)
	case intent.GetSummary:
		return FormatSummary(res.Tasks, res.Habits)
	case intent.Help:
		return Help
	default:
		return Chat
	}
}

func formatError(res dispatch.Result, err error) string {
	switch {
	case errors.Is(err, dispatch.ErrAuthenticationRequired):
		return AuthPrompt
	case errors.Is(err, dispatch.ErrMissingEntity):
		return missingEntity(res.Intent)
	case errors.Is(err, dispatch.ErrNoMatchFound):
		return fmt.Sprintf("Je ne trouve pas d'habitude nommée \"%s\". Vérifiez le nom et réessayez.", res.Term)
	}

	var apiErr *productif.APIError
	if errors.As(err, &apiErr) && apiErr.Unauthorized() {
		return CredentialKO
	}
	if errors.Is(err, dispatch.ErrExternalAPI) {
		return externalFailure(res.Intent)
	}
	return GenericError
}

func missingEntity(in intent.Intent) string {
	switch in.(type) {
	case intent.CreateTask:
		return "Quel est le titre de la tâche ? Par exemple : '📝 Appeler le client [p:3, d:2025-06-20]'"
	case intent.CreateHabit:
		return "Quel est le nom de l'habitude ? Par exemple : 'Nouvelle habitude : Méditation'"
	case intent.CreateProcess:
		return "Quel est le nom du processus ? Par exemple : '⚙️ Onboarding [étape1, étape2]'"
	case intent.GetHabitDetails:
		return "De quelle habitude voulez-vous les détails ? Par exemple : 'Détails sur Méditation'"
	case intent.UpdatePreferences:
		return "Quelle préférence voulez-vous modifier ? Par exemple : 'Je me réveille à 7h' ou 'Je préfère le matin'"
	case intent.CompleteItems:
		return "Qu'avez-vous terminé ? Par exemple : 'J'ai fait méditation et lecture'"
	default:
		return Rephrase
	}
}

func externalFailure(in intent.Intent) string {
	switch in.(type) {
	case intent.GetTasks, intent.CompleteItems:
		return "Désolé, je n'ai pas pu récupérer vos tâches ou habitudes. Veuillez réessayer dans quelques instants."
	case intent.GetHabits, intent.GetHabitDetails:
		return "Désolé, je n'arrive pas à récupérer vos habitudes pour le moment. Pouvez-vous réessayer dans quelques instants ?"
	case intent.GetProcesses:
		return "Une erreur est survenue lors de la récupération des processus. Veuillez réessayer."
	case intent.GetSummary:
		return "Désolé, je n'ai pas pu récupérer vos informations. Veuillez réessayer."
	case intent.CreateTask:
		return "Une erreur est survenue lors de la création de la tâche. Veuillez réessayer."
	case intent.CreateHabit:
		return "Une erreur est survenue lors de la création de l'habitude. Veuillez réessayer."
	case intent.CreateProcess:
		return "Une erreur est survenue lors de la création du processus. Veuillez réessayer."
	case intent.UpdatePreferences:
		return "Une erreur est survenue lors de la mise à jour de vos préférences. Veuillez réessayer."
	case intent.RateDay:
		return "Une erreur est survenue lors de l'enregistrement de votre note. Veuillez réessayer."
	default:
		return GenericError
	}
}

// causeText 单条失败的简短说明
func causeText(err error) string {
	switch util.ClassifyError(err) {
	case "timeout":
		return "délai dépassé"
	case "unauthorized":
		return "accès refusé"
	case "api_5xx", "network_error":
		return "service momentanément indisponible"
	case "api_4xx":
		return "demande refusée"
	default:
		return "erreur inattendue"
	}
}

func bullets(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(title)
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString("• ")
		b.WriteString(item)
		b.WriteString("\n")
	}
}

func itemErrors(errs []dispatch.ItemError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, fmt.Sprintf("%s : %s", e.Term, causeText(e.Cause)))
	}
	return out
}

func formatHabitCompletion(o dispatch.Outcome) string {
	if o.Empty() {
		return NothingDone
	}
	var b strings.Builder
	bullets(&b, "✅ Habitudes marquées comme terminées :", o.Succeeded)
	bullets(&b, "☑️ Déjà terminées :", o.AlreadyDone)
	bullets(&b, "❌ Habitudes non trouvées :", o.NotFound)
	bullets(&b, "⚠️ Non enregistrées, veuillez réessayer :", itemErrors(o.Errors))
	return strings.TrimRight(b.String(), "\n")
}

func formatTaskCompletion(res dispatch.Result) string {
	o := res.Outcome
	if o.Empty() {
		return NothingDone
	}
	var b strings.Builder
	bullets(&b, "🎉 Super ! Tâches marquées comme terminées :", o.Succeeded)
	bullets(&b, "☑️ Déjà marquées comme terminées :", o.AlreadyDone)
	bullets(&b, "❌ Tâches non trouvées :", o.NotFound)
	bullets(&b, "⚠️ Non enregistrées, veuillez réessayer :", itemErrors(o.Errors))

	if len(o.NotFound) > 0 && len(res.Tasks) > 0 {
		b.WriteString("\nVoici vos tâches actuelles :\n")
		for _, t := range res.Tasks {
			b.WriteString("⬜ ")
			b.WriteString(t.Title)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatRating(v intent.RateDay, o dispatch.Outcome) string {
	switch {
	case len(o.Succeeded) > 0:
		s := fmt.Sprintf("⭐ Note de la journée enregistrée : %d/10", v.Rating)
		if v.Comment != "" {
			s += "\n📝 " + v.Comment
		}
		return s
	case len(o.NotFound) > 0:
		return fmt.Sprintf("Je ne trouve pas l'habitude \"%s\". Créez-la dans productif.io pour pouvoir noter vos journées.", o.NotFound[0])
	case len(o.Errors) > 0:
		return externalFailure(v)
	default:
		return NothingDone
	}
}

func formatCreatedTask(res dispatch.Result) string {
	task := res.CreatedTask
	if task == nil {
		return NothingDone
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✅ J'ai créé la tâche \"%s\" pour vous.\n", task.Title)
	fmt.Fprintf(&b, "Priorité : %d/4\n", task.Priority)
	fmt.Fprintf(&b, "Niveau d'énergie : %d/3\n", task.EnergyLevel)
	if due, ok := task.Due(); ok {
		fmt.Fprintf(&b, "Date d'échéance : %s\n", due.Format("02/01/2006"))
	}
	if res.ProjectName != "" {
		fmt.Fprintf(&b, "Projet : %s\n", res.ProjectName)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatCreatedHabit(h *model.Habit) string {
	if h == nil {
		return NothingDone
	}
	s := fmt.Sprintf("✅ J'ai créé l'habitude \"%s\" pour vous.\nFréquence : %s", h.Name, formatFrequency(h.Frequency))
	if h.PreferredTime != "" {
		s += "\nHeure préférée : " + h.PreferredTime
	}
	return s
}

func formatCreatedProcess(res dispatch.Result) string {
	p := res.CreatedProcess
	if p == nil {
		return NothingDone
	}
	if len(res.Steps) == 0 {
		return fmt.Sprintf("✅ J'ai créé le processus \"%s\".", p.Name)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✅ J'ai créé le processus \"%s\" avec les étapes suivantes :\n\n", p.Name)
	for _, step := range res.Steps {
		b.WriteString("⬜ ")
		b.WriteString(step)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

var focusPeriodNames = map[string]string{
	"morning":   "le matin",
	"afternoon": "l'après-midi",
	"evening":   "le soir",
}

func formatPreferences(p model.Preferences) string {
	s := "✅ Vos préférences ont été mises à jour avec succès !"
	if p.WakeUpTime != "" {
		s += "\n• Réveil : " + p.WakeUpTime
	}
	if p.FocusPeriod != "" {
		name, ok := focusPeriodNames[p.FocusPeriod]
		if !ok {
			name = p.FocusPeriod
		}
		s += "\n• Tâches importantes : " + name
	}
	return s
}
