package reply

// 固定回复文案
const (
	AuthPrompt = "Pour utiliser ce service, veuillez vous authentifier avec votre token API productif.io.\n" +
		"Vous pouvez le trouver dans vos paramètres sur https://productif.io"

	Welcome = "Bonjour ! Je suis votre assistant personnel. Je vais vous aider à gérer vos tâches et habitudes.\n\n" + AuthPrompt

	TokenAccepted = "✅ Token validé avec succès ! Vous pouvez maintenant utiliser toutes les fonctionnalités. Comment puis-je vous aider ?"
	TokenRejected = "❌ Le token fourni n'est pas valide. Veuillez vérifier et réessayer."
	TokenExpired  = "❌ Ce token a expiré. Générez-en un nouveau dans vos paramètres sur https://productif.io puis envoyez-le ici."
	TokenCheckErr = "Une erreur est survenue lors de la validation du token. Veuillez réessayer."

	GenericError = "Une erreur est survenue lors du traitement de votre message. Veuillez réessayer."
	Rephrase     = "Je n'ai pas bien compris. Pouvez-vous reformuler ?"
	NothingDone  = "Aucune modification n'a été effectuée."
	CredentialKO = "Votre token ne semble plus valide. Envoyez un nouveau token productif.io pour continuer."

	Help = "🤖 Voici comment je peux vous aider :\n\n" +
		"1. Gérer vos habitudes :\n" +
		"   - \"Montre-moi mes habitudes\"\n" +
		"   - \"Détails sur [nom de l'habitude]\"\n" +
		"   - \"J'ai fait [nom de l'habitude]\"\n" +
		"   - \"Nouvelle habitude : [nom]\"\n\n" +
		"2. Gérer vos tâches :\n" +
		"   - \"📝 [titre] [p:1-4, e:0-3, d:AAAA-MM-JJ, projet:nom]\"\n" +
		"   - \"✅ [titre de la tâche]\"\n\n" +
		"3. Processus et journée :\n" +
		"   - \"⚙️ [nom du processus] [étape1, étape2, étape3]\"\n" +
		"   - \"⭐ [note/10] [commentaire]\"\n\n" +
		"4. Voir vos progrès :\n" +
		"   - \"Montre-moi mon résumé\"\n" +
		"   - \"Quelles sont mes tâches pour aujourd'hui ?\"\n\n" +
		"5. Modifier vos préférences :\n" +
		"   - \"Je me réveille à [heure]\"\n" +
		"   - \"Je préfère faire les tâches importantes le [moment]\""

	Chat = "Je ne comprends pas votre demande. Voici ce que je peux faire :\n" +
		"- Voir vos tâches : 'montre-moi mes tâches'\n" +
		"- Créer une tâche : '📝 [titre de la tâche] [options]'\n" +
		"- Marquer une tâche comme terminée : '✅ [titre de la tâche]'\n" +
		"- Noter votre journée : '⭐ [note/10] [commentaire]'\n" +
		"- Voir vos processus : 'montre-moi mes processus'\n" +
		"- Créer un processus : '⚙️ [nom du processus] [étape1, étape2, étape3]'\n" +
		"- Voir vos habitudes : 'montre-moi mes habitudes'"
)
