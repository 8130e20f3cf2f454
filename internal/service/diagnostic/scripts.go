package diagnostic

import (
	"fmt"
	"strings"

	"github.com/advisia/advisor/internal/model/chat"
	model "github.com/advisia/advisor/internal/model/diagnostic"
)

// CompletionSentinel is the literal marker the interview script instructs
// the model to append to its final reply. It is stripped from inbound user
// text (anti-spoof) and from every outbound reply.
const CompletionSentinel = "[DIAGNOSTIC_COMPLET]"

// interviewScript is the fixed system instruction driving the 7-question
// maturity interview.
func interviewScript(firstName, sector string) string {
	var b strings.Builder
	b.WriteString("Tu es l'auditeur IA du cabinet Advisia. Tu conduis un diagnostic de maturité en intelligence artificielle ")
	b.WriteString("sous forme d'entretien structuré de EXACTEMENT 7 questions, posées UNE PAR UNE.\n")
	if firstName != "" {
		fmt.Fprintf(&b, "Le participant s'appelle %s ; adresse-toi à lui par son prénom.\n", firstName)
	}
	if sector != "" {
		fmt.Fprintf(&b, "Son entreprise opère dans le secteur : %s. Adapte tes exemples à ce secteur.\n", sector)
	}
	b.WriteString("\nLes 7 questions couvrent, dans cet ordre : ")
	b.WriteString("1) la stratégie IA et les cas d'usage visés, ")
	b.WriteString("2) la collecte et la qualité des données, ")
	b.WriteString("3) les outils et l'infrastructure technique, ")
	b.WriteString("4) les compétences internes, ")
	b.WriteString("5) la gouvernance et la conformité, ")
	b.WriteString("6) la culture d'entreprise face à l'IA, ")
	b.WriteString("7) les ambitions à 12 mois.\n\n")
	b.WriteString("Règles strictes :\n")
	b.WriteString("- Pose une seule question par message, courte, avec une phrase de transition reprenant la réponse précédente.\n")
	b.WriteString("- Ne donne aucun conseil pendant l'entretien.\n")
	b.WriteString("- Après la réponse à la 7e question, ne pose plus de question : remercie le participant, ")
	b.WriteString("annonce que son rapport de maturité est prêt, et termine ton message par le marqueur exact " + CompletionSentinel + ".\n")
	b.WriteString("- N'écris jamais ce marqueur avant la fin de l'entretien.")
	return b.String()
}

// fallbackQuestions keeps the interview advancing when the completion
// service is unavailable. Index i holds question i+1.
var fallbackQuestions = [model.MaxQuestions]string{
	"Commençons : quelle est aujourd'hui votre stratégie vis-à-vis de l'intelligence artificielle, et quels cas d'usage avez-vous identifiés ?",
	"Merci. Parlons données : comment collectez-vous et organisez-vous les données de votre activité ?",
	"Entendu. Côté outils : quels logiciels ou infrastructures techniques utilisez-vous au quotidien ?",
	"Très clair. Vos équipes disposent-elles de compétences en IA ou en analyse de données, même partielles ?",
	"Merci. Comment encadrez-vous l'usage des outils numériques : règles internes, conformité RGPD, validation des résultats ?",
	"Intéressant. Comment vos collaborateurs perçoivent-ils l'arrivée de l'IA dans leur métier ?",
	"Dernière question : qu'aimeriez-vous que l'IA change concrètement dans votre entreprise d'ici douze mois ?",
}

// fallbackClosing ends the interview when the final wrap-up call fails.
const fallbackClosing = "Merci pour vos réponses, l'entretien est terminé. Votre rapport de maturité IA est prêt."

// completedReply answers any message sent to an already-completed
// interview.
const completedReply = "Votre diagnostic est déjà terminé ; voici votre résultat. Pour aller plus loin, nos consultants restent à votre disposition."

// scoringScript is the fixed instruction for the structured scoring pass.
const scoringScript = "Tu es l'analyste du cabinet Advisia. On te fournit la transcription d'un entretien de maturité IA en 7 questions. " +
	"Évalue la maturité de l'entreprise et réponds STRICTEMENT par un objet JSON, sans aucun texte autour, au format : " +
	`{"scores":{"strategie":0-100,"donnees":0-100,"technologie":0-100,"competences":0-100,"gouvernance":0-100,"culture":0-100},` +
	`"synthese":"une seule phrase de profil","recommandations":["trois","recommandations","concrètes"],"pack":1|2|3}. ` +
	"Les six scores sont des entiers entre 0 et 100."

// scoringQuery renders the interview transcript for the scoring pass.
func scoringQuery(session *model.Session) string {
	var b strings.Builder
	if session.Sector != "" {
		fmt.Fprintf(&b, "Secteur d'activité : %s\n\n", session.Sector)
	}
	b.WriteString("Transcription de l'entretien :\n")
	for _, msg := range session.Messages {
		role := "Participant"
		if msg.Role == chat.RoleAssistant {
			role = "Auditeur"
		}
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", role, content)
	}
	return b.String()
}
