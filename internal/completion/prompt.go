package completion

import (
	"strings"

	"productif-agent/internal/intent"
)

// labelDescriptions 每个标签给补全服务的一句说明
var labelDescriptions = []struct {
	label intent.Label
	desc  string
}{
	{intent.LabelGetTasks, "voir ses tâches"},
	{intent.LabelGetHabits, "voir ses habitudes du jour"},
	{intent.LabelGetProcesses, "voir ses processus"},
	{intent.LabelMarkComplete, "marquer une tâche ou une habitude comme terminée"},
	{intent.LabelGetHabitDetails, "obtenir les détails d'une habitude précise"},
	{intent.LabelUpdatePreferences, "mettre à jour ses préférences (heure de réveil, moment préféré)"},
	{intent.LabelGetSummary, "obtenir un résumé de la journée"},
	{intent.LabelCreateTask, "créer une nouvelle tâche"},
	{intent.LabelCreateHabit, "créer une nouvelle habitude"},
	{intent.LabelCreateProcess, "créer un nouveau processus"},
	{intent.LabelHelp, "obtenir de l'aide"},
	{intent.LabelChat, "conversation générale"},
}

// SystemPrompt asks for exactly one label and nothing else.
func SystemPrompt() string {
	var b strings.Builder
	b.WriteString("En tant qu'assistant personnel de productivité, analyse le message de l'utilisateur ")
	b.WriteString("et détermine son intention.\n\nRéponds uniquement par une des intentions suivantes, sans autre texte :\n")
	for _, d := range labelDescriptions {
		b.WriteString("- ")
		b.WriteString(string(d.label))
		b.WriteString(" : ")
		b.WriteString(d.desc)
		b.WriteByte('\n')
	}
	return b.String()
}
