package cli

import (
	"fmt"
	"strings"

	"github.com/trogers1052/carteira-dashboard/internal/dashboard"
	"github.com/trogers1052/carteira-dashboard/internal/locale"
	"github.com/trogers1052/carteira-dashboard/internal/models"
	"github.com/trogers1052/carteira-dashboard/internal/options"
	"github.com/trogers1052/carteira-dashboard/internal/ticker"
)

// CardsMarkdown renders position cards as a table
func CardsMarkdown(cards []dashboard.Card) string {
	var b strings.Builder
	b.WriteString("# Carteira\n\n")
	if len(cards) == 0 {
		b.WriteString("Nenhuma ação cadastrada.\n")
		return b.String()
	}

	b.WriteString("| Ação | Cotação | Variação | Preço Médio | Preço Teto | Alerta |\n")
	b.WriteString("|:-----|--------:|---------:|------------:|-----------:|:-------|\n")
	var notes []string
	stale := false
	for _, c := range cards {
		current := c.CurrentPrice
		if c.Stale {
			current += " *"
			stale = true
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			c.Code, current, c.Change, c.AvgPrice, c.TargetPrice, c.Label)
		if c.Error != "" {
			notes = append(notes, fmt.Sprintf("- %s: %s", c.Code, c.Error))
		}
	}
	if stale {
		notes = append(notes, "- \\* cotação do cache, a consulta mais recente falhou")
	}
	writeNotes(&b, notes)
	return b.String()
}

// PositionsMarkdown renders stored positions as a table
func PositionsMarkdown(positions []models.Position) string {
	var b strings.Builder
	b.WriteString("| Ação | Preço Médio | Preço Teto |\n")
	b.WriteString("|:-----|------------:|-----------:|\n")
	for _, p := range positions {
		fmt.Fprintf(&b, "| %s | %s | %s |\n",
			ticker.Display(p.Code), locale.Format(p.AvgPrice), locale.Format(p.TargetPrice))
	}
	return b.String()
}

// OptionCardsMarkdown renders option cards as a table
func OptionCardsMarkdown(cards []dashboard.OptionCard) string {
	var b strings.Builder
	b.WriteString("# Opções\n\n")
	if len(cards) == 0 {
		b.WriteString("Nenhuma opção cadastrada.\n")
		return b.String()
	}

	b.WriteString("| Opção | Base | Tipo | Vencimento | Dias | Strike | Último | Preço Base | Intrínseco | Objetivo | Alerta |\n")
	b.WriteString("|:------|:-----|:-----|:-----------|-----:|-------:|-------:|-----------:|-----------:|---------:|:-------|\n")
	var notes []string
	for _, c := range cards {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %d | %s | %s | %s | %s | %s | %s |\n",
			c.Code, c.Underlying, c.OptionType, c.Expiry, c.DaysToExpiry, c.Strike,
			c.LastClose, c.UnderlyingPrice, c.IntrinsicValue, c.TargetPrice, c.Label)
		if c.Error != "" {
			notes = append(notes, fmt.Sprintf("- %s: %s", c.Code, c.Error))
		}
	}
	writeNotes(&b, notes)
	return b.String()
}

// AlertsMarkdown renders the alert history as a table
func AlertsMarkdown(history []models.AlertHistory) string {
	var b strings.Builder
	b.WriteString("| Data | Ação | Classificação | Cotação | Preço Teto |\n")
	b.WriteString("|:-----|:-----|:--------------|--------:|-----------:|\n")
	for _, a := range history {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			models.FormatQuoteTime(a.TriggeredAt), ticker.Display(a.Code), a.Classification,
			locale.FormatOptional(a.Price), locale.Format(a.TargetPrice))
	}
	return b.String()
}

// ContractMarkdown describes a decoded option code
func ContractMarkdown(c *options.Contract) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", c.Code)
	fmt.Fprintf(&b, "- Ativo base: %s\n", c.Root)
	fmt.Fprintf(&b, "- Tipo: %s\n", c.OptionType)
	fmt.Fprintf(&b, "- Vencimento: %s\n", c.Expiry.Format(models.DateLayout))
	fmt.Fprintf(&b, "- Strike: %s\n", locale.Format(c.Strike))
	return b.String()
}

func writeNotes(b *strings.Builder, notes []string) {
	if len(notes) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(strings.Join(notes, "\n"))
	b.WriteString("\n")
}
