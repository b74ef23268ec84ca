package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/opcoes"
	md "github.com/nao1215/markdown"
)

// PreviewMarkdown renders what a candidate position would look like before
// it is registered.
func PreviewMarkdown(p opcoes.Position, cov opcoes.Coverage) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Simulação: %s %s", operation(p), p.Ticker))

	rows := [][]string{
		{"Ativo", p.Underlying},
		{"Strike", p.Strike.String()},
		{"Cotação", p.Quote.String()},
		{"Quantidade", p.Quantity.Format()},
		{"Prêmio", p.Premium.String()},
		{"Valor inicial", p.InitialValue().String()},
		{p.MaxResultLabel(), p.MaxResult().String()},
		{"Valor de exercício", p.ExerciseValue().String()},
		{"Rentabilidade sobre a garantia", opcoes.FormatPercent(p.CollateralYield())},
		{"Divergência", formatSigned(p.Divergence())},
		{"Risco", riskLabel(p)},
	}
	if p.Direction == opcoes.Sell {
		rows = append(rows, []string{"Rentabilidade máxima", opcoes.FormatPercent(p.MaxProfitability())})
	}
	if !p.Expiration.IsZero() {
		rows = append(rows, []string{"Vencimento", p.Expiration.Local()})
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Item", "Valor"},
		Rows:      rows,
	})

	doc.H2("Garantia")
	switch cov.Regime {
	case opcoes.EquityBacked:
		doc.Table(md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"Ações", "Quantidade"},
			Rows: [][]string{
				{"Necessárias", cov.RequiredShares.Format()},
				{"Livres", cov.FreeShares.Format()},
			},
		})
	default:
		doc.Table(md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"Renda fixa", "Valor"},
			Rows: [][]string{
				{"Necessária", cov.RequiredAmount.String()},
				{"Livre", cov.FreeAmount.String()},
			},
		})
	}
	doc.PlainText(md.Bold(cov.Label()))

	return doc.String()
}
