package renderer

import (
	"bytes"

	"github.com/etnz/opcoes"
	md "github.com/nao1215/markdown"
)

// CollateralMarkdown renders every collateral with its pledged and free part.
func CollateralMarkdown(a opcoes.Allocation) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Garantias")

	doc.H2("Ações")
	if len(a.Equities) == 0 {
		doc.PlainText("Nenhuma ação em garantia.")
	} else {
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignLeft},
			Header:    []string{"ID", "Ticker", "Quantidade", "Livre", "Situação"},
		}
		for _, h := range a.Equities {
			table.Rows = append(table.Rows, []string{
				shortID(h.ID),
				h.Ticker,
				h.Quantity.Format(),
				h.Free.Format(),
				h.Status(),
			})
		}
		doc.Table(table)
	}

	doc.H2("Renda fixa")
	if len(a.FixedIncome) == 0 {
		doc.PlainText("Nenhuma garantia em renda fixa.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"ID", "Instrumento", "Valor", "Comprometido", "Livre"},
	}
	for _, h := range a.FixedIncome {
		table.Rows = append(table.Rows, []string{
			shortID(h.ID),
			h.Instrument.Label(),
			h.Amount.String(),
			h.Pledged.String(),
			h.Free.String(),
		})
	}
	table.Rows = append(table.Rows, []string{md.Bold("Total"), "", md.Bold(a.TotalAmount().String()), "", md.Bold(a.FreeAmount().String())})
	doc.Table(table)

	return doc.String()
}
