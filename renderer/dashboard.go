package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/opcoes"
	md "github.com/nao1215/markdown"
)

// DashboardMarkdown renders the dashboard cards, the call/put distribution and
// the expiration alerts.
func DashboardMarkdown(d opcoes.Dashboard) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Dashboard em %s", d.On.Local()))

	putCollateral := d.PutCollateral.String()
	if d.PutCollateralShort() {
		putCollateral = md.Bold(putCollateral + " (insuficiente)")
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Indicador", "Valor"},
		Rows: [][]string{
			{"Operações abertas", strconv.Itoa(d.OpenCount)},
			{fmt.Sprintf("Resultado de %s", opcoes.MonthName(d.On)), d.MonthResult.SignedString()},
			{"Resultado máximo estimado", d.MaxEstimated.SignedString()},
			{"Nocional de PUTs vendidas", d.Notional.String()},
			{"Garantia em renda fixa", putCollateral},
		},
	})

	doc.H2("Distribuição")
	calls, callsOK := d.Distribution.CallShare()
	puts, putsOK := d.Distribution.PutShare()
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Tipo", "Operações", "Participação"},
		Rows: [][]string{
			{"CALL", strconv.Itoa(d.Distribution.Calls), opcoes.FormatPercent(calls, callsOK)},
			{"PUT", strconv.Itoa(d.Distribution.Puts), opcoes.FormatPercent(puts, putsOK)},
		},
	})

	doc.H2("Alertas de vencimento")
	if len(d.Alerts) == 0 {
		doc.PlainText("Nenhuma operação vence nos próximos dias.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Ticker", "Operação", "Vencimento", "Dias"},
	}
	for _, a := range d.Alerts {
		table.Rows = append(table.Rows, []string{
			a.Ticker,
			fmt.Sprintf("%s %s", a.Direction.Label(), a.Type),
			a.Expiration.Local(),
			daysLeft(a.DaysLeft),
		})
	}
	doc.Table(table)

	return doc.String()
}

func daysLeft(n int) string {
	switch n {
	case 0:
		return "hoje"
	case 1:
		return "amanhã"
	default:
		return fmt.Sprintf("%d dias", n)
	}
}
