package reply

import (
	"fmt"
	"sort"
	"strings"

	"productif-agent/internal/model"
)

const (
	noProject     = "Sans projet"
	defaultFolder = "Mes Habitudes"
)

// FormatTasks groups tasks by project in first-seen order. Within a project
// open tasks come first, then higher priority.
func FormatTasks(tasks []model.Task) string {
	if len(tasks) == 0 {
		return "Vous n'avez pas encore de tâches. Voulez-vous en créer une ? " +
			"Envoyez par exemple '📝 Appeler le client' et je m'en occupe."
	}

	var order []string
	groups := make(map[string][]model.Task)
	for _, t := range tasks {
		name := noProject
		if t.Project != nil && t.Project.Name != "" {
			name = t.Project.Name
		}
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		groups[name] = append(groups[name], t)
	}

	var b strings.Builder
	b.WriteString("📋 Voici vos tâches :\n\n")
	for _, name := range order {
		group := groups[name]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Completed != group[j].Completed {
				return !group[i].Completed
			}
			return group[i].Priority > group[j].Priority
		})

		fmt.Fprintf(&b, "📁 %s :\n", name)
		for _, t := range group {
			status := "⬜"
			if t.Completed {
				status = "✅"
			}
			b.WriteString(status + " " + t.Title)
			if t.Priority > 0 {
				b.WriteString(" " + strings.Repeat("🔥", t.Priority))
			}
			if due, ok := t.Due(); ok {
				fmt.Fprintf(&b, " (📅 %s)", due.Format("02/01/2006"))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatHabits groups habits by category with today's status and streak.
func FormatHabits(habits []model.Habit) string {
	if len(habits) == 0 {
		return "Vous n'avez pas encore d'habitudes programmées. Voulez-vous en créer une ? " +
			"Je peux vous aider à mettre en place de bonnes habitudes pour atteindre vos objectifs."
	}

	var order []string
	groups := make(map[string][]model.Habit)
	for _, h := range habits {
		cat := h.Category
		if cat == "" {
			cat = defaultFolder
		}
		if _, ok := groups[cat]; !ok {
			order = append(order, cat)
		}
		groups[cat] = append(groups[cat], h)
	}

	var b strings.Builder
	b.WriteString("📋 Voici le détail de vos habitudes :\n\n")
	for _, cat := range order {
		b.WriteString(cat + ":\n")
		for _, h := range groups[cat] {
			status := "⏳"
			if h.Completed {
				status = "✅"
			}
			fmt.Fprintf(&b, "• %s %s", h.Name, status)
			if h.CurrentStreak > 0 {
				fmt.Fprintf(&b, " 🔥 %dj", h.CurrentStreak)
			}
			b.WriteString("\n")

			if days := formatDaysOfWeek(h.DaysOfWeek); days != everyDay {
				b.WriteString("  ↳ " + days + "\n")
			} else if h.Frequency != "" {
				b.WriteString("  ↳ " + formatFrequency(h.Frequency) + "\n")
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("Pour marquer une habitude comme terminée, dites-moi simplement 'J'ai fait [nom de l'habitude]'.\n")
	b.WriteString("Pour plus de détails sur une habitude spécifique, demandez-moi 'Détails sur [nom de l'habitude]'.")
	return b.String()
}

// FormatHabitDetails shows one habit in full.
func FormatHabitDetails(h *model.Habit) string {
	if h == nil {
		return Rephrase
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Détails de l'habitude \"%s\":\n\n", h.Name)
	if h.Frequency != "" {
		fmt.Fprintf(&b, "• Fréquence: %s\n", formatFrequency(h.Frequency))
	}
	if h.PreferredTime != "" {
		fmt.Fprintf(&b, "• Heure préférée: %s\n", h.PreferredTime)
	}
	if h.CurrentStreak > 0 {
		fmt.Fprintf(&b, "• Série actuelle: 🔥 %d jours\n", h.CurrentStreak)
	}
	if h.BestStreak > 0 {
		fmt.Fprintf(&b, "• Meilleure série: ⭐ %d jours\n", h.BestStreak)
	}
	fmt.Fprintf(&b, "• Jours: %s\n", formatDaysOfWeek(h.DaysOfWeek))
	if h.Description != "" {
		fmt.Fprintf(&b, "\nDescription:\n%s\n", h.Description)
	}
	if h.Completed {
		b.WriteString("\nStatut aujourd'hui: ✅ Terminée")
	} else {
		b.WriteString("\nStatut aujourd'hui: ⏳ À faire")
	}
	return b.String()
}

// FormatProcesses lists processes with their checklist and progress.
func FormatProcesses(processes []model.Process) string {
	if len(processes) == 0 {
		return "Vous n'avez pas encore de processus. Un processus est une série d'étapes ou de tâches qui se répètent régulièrement.\n" +
			"Créez-en un avec '⚙️ [nom du processus] [étape1, étape2, étape3]'."
	}

	var b strings.Builder
	b.WriteString("📋 Voici vos processus :\n\n")
	for _, p := range processes {
		fmt.Fprintf(&b, "📌 %s\n", p.Name)
		if steps, ok := p.Steps(); ok {
			writeSteps(&b, steps, "   ")
		} else if desc := strings.TrimSpace(p.Description); desc != "" {
			fmt.Fprintf(&b, "   %s\n", desc)
		}

		var stats model.ProcessStats
		if p.Stats != nil {
			stats = *p.Stats
		}
		fmt.Fprintf(&b, "   Progression : %d%% (%d/%d tâches)\n\n",
			stats.CompletionPercentage, stats.CompletedTasks, stats.TotalTasks)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeSteps(b *strings.Builder, steps []model.ProcessStep, indent string) {
	for _, s := range steps {
		box := "⬜"
		if s.Completed {
			box = "☑️"
		}
		fmt.Fprintf(b, "%s%s %s\n", indent, box, s.Title)
		if len(s.SubSteps) > 0 {
			writeSteps(b, s.SubSteps, indent+"   ")
		}
	}
}

// FormatSummary lists open tasks and habits not yet done today.
func FormatSummary(tasks []model.Task, habits []model.Habit) string {
	var b strings.Builder
	b.WriteString("Voici votre résumé du jour :\n\n🎯 Tâches en cours :\n")
	open := 0
	for _, t := range tasks {
		if !t.Completed {
			b.WriteString("- " + t.Title + "\n")
			open++
		}
	}
	if open == 0 {
		b.WriteString("Aucune tâche en attente 🎉\n")
	}

	b.WriteString("\n💪 Habitudes à suivre :\n")
	pending := 0
	for _, h := range habits {
		if !h.Completed {
			b.WriteString("- " + h.Name + "\n")
			pending++
		}
	}
	if pending == 0 {
		b.WriteString("Toutes vos habitudes sont faites aujourd'hui 🎉\n")
	}

	b.WriteString("\nQue puis-je faire pour vous aider ?")
	return b.String()
}

var frequencyNames = map[string]string{
	"daily":    "Tous les jours",
	"weekly":   "Chaque semaine",
	"weekdays": "En semaine",
	"weekends": "Les weekends",
	"monthly":  "Chaque mois",
}

func formatFrequency(f string) string {
	if name, ok := frequencyNames[f]; ok {
		return name
	}
	return f
}

const everyDay = "Tous les jours"

var weekDays = []struct{ key, name string }{
	{"monday", "Lundi"},
	{"tuesday", "Mardi"},
	{"wednesday", "Mercredi"},
	{"thursday", "Jeudi"},
	{"friday", "Vendredi"},
	{"saturday", "Samedi"},
	{"sunday", "Dimanche"},
}

// formatDaysOfWeek 按周一到周日排序；为空或七天全选时视为每天
func formatDaysOfWeek(days []string) string {
	if len(days) == 0 || len(days) == 7 {
		return everyDay
	}
	set := make(map[string]bool, len(days))
	for _, d := range days {
		set[strings.ToLower(d)] = true
	}
	var names []string
	for _, d := range weekDays {
		if set[d.key] {
			names = append(names, d.name)
		}
	}
	if len(names) == 0 {
		return everyDay
	}
	return strings.Join(names, ", ")
}
