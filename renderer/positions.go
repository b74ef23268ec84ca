package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/opcoes"
	md "github.com/nao1215/markdown"
)

// riskLabel renders the risk band of p, or NotApplicable.
func riskLabel(p opcoes.Position) string {
	r, ok := p.Risk()
	if !ok {
		return opcoes.NotApplicable
	}
	return fmt.Sprintf("%s (%s)", r.Level.Label(), r.Divergence.SignedString())
}

func operation(p opcoes.Position) string {
	return fmt.Sprintf("%s %s", p.Direction.Label(), p.Type)
}

// PositionsMarkdown lists the open positions by expiration, with their risk
// and coverage, then the closed ones by closing date.
func PositionsMarkdown(s *opcoes.Snapshot) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Operações")

	open := s.OpenByExpiration()
	doc.H2(fmt.Sprintf("Abertas (%d)", len(open)))
	if len(open) == 0 {
		doc.PlainText("Nenhuma operação aberta.")
	} else {
		table := md.TableSet{
			Alignment: []md.TableAlignment{
				md.AlignLeft, md.AlignLeft, md.AlignLeft,
				md.AlignRight, md.AlignRight, md.AlignRight,
				md.AlignLeft, md.AlignRight, md.AlignLeft, md.AlignLeft,
			},
			Header: []string{"ID", "Ticker", "Operação", "Strike", "Qtd.", "Prêmio", "Vencimento", "Resultado máx.", "Risco", "Garantia"},
		}
		for _, p := range open {
			table.Rows = append(table.Rows, []string{
				shortID(p.ID),
				fmt.Sprintf("%s (%s)", p.Ticker, p.Underlying),
				operation(p),
				p.Strike.String(),
				p.Quantity.Format(),
				p.Premium.String(),
				p.Expiration.Local(),
				p.MaxResult().SignedString(),
				riskLabel(p),
				s.Coverage(p).Label(),
			})
		}
		doc.Table(table)
	}

	closed := s.ClosedByDate()
	doc.H2(fmt.Sprintf("Encerradas (%d)", len(closed)))
	if len(closed) == 0 {
		doc.PlainText("Nenhuma operação encerrada.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft, md.AlignLeft, md.AlignLeft,
			md.AlignRight, md.AlignRight, md.AlignLeft,
			md.AlignRight, md.AlignRight,
		},
		Header: []string{"ID", "Ticker", "Operação", "Prêmio", "Prêmio final", "Encerramento", "Resultado", "%"},
	}
	for _, c := range closed {
		table.Rows = append(table.Rows, []string{
			shortID(c.ID),
			fmt.Sprintf("%s (%s)", c.Ticker, c.Underlying),
			operation(c.Position),
			c.Premium.String(),
			c.Closing.Premium.String(),
			c.Closing.Date.Local(),
			c.Result().SignedString(),
			formatSigned(c.ResultPercent()),
		})
	}
	doc.Table(table)

	return doc.String()
}

func formatSigned(p opcoes.Percent, ok bool) string {
	if !ok {
		return opcoes.NotApplicable
	}
	return p.SignedString()
}

// shortID keeps IDs readable in tables; commands accept any unique prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
