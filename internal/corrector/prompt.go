package corrector

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"latex-corrector/internal/types"
)

// buildSystemPrompt returns the persona and output rules for the model.
func buildSystemPrompt() string {
	return `Vous êtes un professeur de mathématiques expérimenté qui rédige des corrections d'exercices en LaTeX pour des élèves de lycée.

La correction doit :
- Expliquer chaque étape clairement
- Utiliser un langage accessible aux élèves
- Inclure des justifications mathématiques
- Respecter les notations mathématiques françaises
- Être structurée de manière pédagogique
- Inclure des diagrammes TikZ si nécessaire pour les problèmes de géométrie

Répondez uniquement avec le contenu de la correction en LaTeX valide, sans balises \begin{correction} ou \end{correction} et sans bloc de code markdown.`
}

// buildUserPrompt wraps the exercise and the optional numbering context.
func buildUserPrompt(exerciseContent string, ds *types.DocumentStructure) string {
	var sb strings.Builder
	sb.WriteString("Voici un exercice LaTeX :\n\n")
	sb.WriteString(exerciseContent)
	sb.WriteString("\n")

	if context := FormatContext(ds); context != "" {
		sb.WriteString("\nContexte de numérotation du document :\n")
		sb.WriteString(context)
		sb.WriteString("Utilisez ces numéros si la correction fait référence à une section ou à un théorème.\n")
	}

	sb.WriteString("\nGénérez une correction pédagogique complète et détaillée en français.")
	return sb.String()
}

// FormatContext renders the document numbering as one line per entry.
// It returns "" when there is nothing to report.
func FormatContext(ds *types.DocumentStructure) string {
	if ds == nil || (len(ds.Sections) == 0 && len(ds.Theorems) == 0) {
		return ""
	}

	var sb strings.Builder
	for _, s := range ds.Sections {
		writeNumbered(&sb, s)
	}
	for _, th := range ds.Theorems {
		writeNumbered(&sb, th)
	}
	fmt.Fprintf(&sb, "- section courante : %d, dernier théorème : %d\n", ds.CurrentSection, ds.CurrentTheorem)
	return sb.String()
}

func writeNumbered(sb *strings.Builder, env types.NumberedEnvironment) {
	if env.Title != "" {
		fmt.Fprintf(sb, "- %s %d : %s\n", env.Type, env.Number, env.Title)
		return
	}
	fmt.Fprintf(sb, "- %s %d\n", env.Type, env.Number)
}

// buildMessages assembles the chat input for one generation attempt.
// Later attempts carry the validation issues of the previous answer.
func buildMessages(exerciseContent string, ds *types.DocumentStructure, previous string, issues string) []*schema.Message {
	messages := []*schema.Message{
		schema.SystemMessage(buildSystemPrompt()),
		schema.UserMessage(buildUserPrompt(exerciseContent, ds)),
	}
	if previous != "" {
		messages = append(messages,
			schema.AssistantMessage(previous, nil),
			schema.UserMessage("Cette correction contient des erreurs de syntaxe LaTeX :\n"+issues+
				"\nRédigez à nouveau la correction complète en corrigeant ces erreurs."),
		)
	}
	return messages
}
