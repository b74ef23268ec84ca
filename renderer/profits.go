package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/opcoes"
	md "github.com/nao1215/markdown"
)

// ProfitsMarkdown renders the realized results per period.
// Buckets are listed most recent first unless ascending is set.
func ProfitsMarkdown(bs opcoes.Buckets, ascending bool) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	title := "Resultados mensais"
	if bs.Period() == opcoes.Yearly {
		title = "Resultados anuais"
	}
	doc.H1(title)

	if bs.Len() == 0 {
		doc.PlainText("Nenhuma operação encerrada no período.")
		return doc.String()
	}

	buckets := bs.Descending()
	if ascending {
		buckets = bs.Ascending()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Período", "Operações", "Ganho", "Perda"},
	}
	for _, b := range buckets {
		table.Rows = append(table.Rows, []string{
			b.Name(),
			fmt.Sprint(len(b.Members)),
			b.Gain().String(),
			b.Loss().String(),
		})
	}
	table.Rows = append(table.Rows, []string{md.Bold("Total"), "", "", md.Bold(bs.Total().SignedString())})
	doc.Table(table)

	return doc.String()
}
