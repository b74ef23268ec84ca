package renderer

import (
	"bytes"

	"github.com/etnz/opcoes"
	md "github.com/nao1215/markdown"
)

var bandLabels = map[opcoes.GoalBand]string{
	opcoes.GoalBehind:  "Abaixo",
	opcoes.GoalOnTrack: "No caminho",
	opcoes.GoalReached: "Atingida",
}

// GoalsMarkdown renders the progress of every goal.
func GoalsMarkdown(progress []opcoes.GoalProgress) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Metas")
	if len(progress) == 0 {
		doc.PlainText("Nenhuma meta cadastrada.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignLeft},
		Header:    []string{"ID", "Meta", "Alvo", "Atual", "Progresso", "Falta", "Situação"},
	}
	for _, gp := range progress {
		table.Rows = append(table.Rows, []string{
			shortID(gp.Goal.ID),
			gp.Goal.Title(),
			gp.Goal.Target.String(),
			gp.Current.SignedString(),
			gp.Percent.String(),
			gp.Remaining.String(),
			bandLabels[gp.Band],
		})
	}
	doc.Table(table)

	return doc.String()
}
