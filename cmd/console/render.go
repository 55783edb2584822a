package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/dungeon-hunt/pkg/content"
	"github.com/jwebster45206/dungeon-hunt/pkg/engine"
	"github.com/jwebster45206/dungeon-hunt/pkg/state"
	"github.com/jwebster45206/dungeon-hunt/pkg/txsim"
	"github.com/jwebster45206/dungeon-hunt/pkg/wallet"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

const (
	Prompt          = "dungeon-hunt@web3:~$"
	PlaceHolderText = "Type a command (try 'help')..."
)

var (
	historyPanelStyle = lipgloss.NewStyle().
				PaddingTop(1).
				PaddingBottom(1).
				PaddingLeft(3).
				PaddingRight(0)

	statusPanelStyle = lipgloss.NewStyle().
				PaddingTop(1).
				PaddingBottom(0).
				PaddingLeft(0).
				PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	commandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")). // bright green
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	hashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")) // blue

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

var toneStyles = map[engine.Tone]lipgloss.Style{
	engine.ToneInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
	engine.ToneSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("86")),  // green
	engine.ToneFailure: lipgloss.NewStyle().Foreground(lipgloss.Color("196")), // red
	engine.ToneCombat:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")), // orange
	engine.ToneReward:  lipgloss.NewStyle().Foreground(lipgloss.Color("220")), // gold
}

func toneStyle(t engine.Tone) lipgloss.Style {
	if s, ok := toneStyles[t]; ok {
		return s
	}
	return toneStyles[engine.ToneInfo]
}

// formatResponse wraps a response to width: the title in its tone colour,
// then each line indented by two.
func formatResponse(resp *engine.Response, width int) string {
	if width < 10 {
		width = 10
	}
	style := toneStyle(resp.Tone)

	var sb strings.Builder
	sb.WriteString(style.Bold(true).Render(wordwrap.String(resp.Title, width)))
	for _, line := range resp.Lines {
		wrapped := indent.String(wordwrap.String(line, width-2), 2)
		sb.WriteString("\n")
		sb.WriteString(style.Render(wrapped))
	}
	return sb.String()
}

// writeHistory renders the session history for the viewport.
func writeHistory(entries []engine.Entry, width int) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("DUNGEON HUNT") + "\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(width, 1))) + "\n\n")

	for _, e := range entries {
		if e.Command != "" {
			content.WriteString(promptStyle.Render(Prompt) + " " + commandStyle.Render(e.Command) + "\n")
		}
		content.WriteString(formatResponse(e.Response, width) + "\n\n")
	}
	return content.String()
}

// writeStatus renders the side panel for the current game state.
func writeStatus(gs *state.GameState, tables *content.Tables) string {
	c := gs.Character
	var content strings.Builder
	content.WriteString(titleStyle.Render("STATUS") + "\n\n")

	locName := gs.Location
	if loc, ok := tables.Location(gs.Location); ok {
		locName = loc.Name
	}
	content.WriteString(labelStyle.Render("Location:") + "\n")
	content.WriteString(locName + "\n\n")

	content.WriteString(fmt.Sprintf("%s %s (%s)\n", labelStyle.Render("Name:"), c.Name, c.Class))
	content.WriteString(fmt.Sprintf("%s    %d/%d\n", labelStyle.Render("HP:"), c.HP, c.MaxHP))
	content.WriteString(fmt.Sprintf("%s    %d/%d\n", labelStyle.Render("MP:"), c.MP, c.MaxMP))
	content.WriteString(fmt.Sprintf("%s  %d\n", labelStyle.Render("Gold:"), c.Gold))
	content.WriteString(fmt.Sprintf("%s %d\n", labelStyle.Render("Level:"), c.Level))
	content.WriteString(fmt.Sprintf("%s   %d/%d\n\n", labelStyle.Render("Exp:"), c.Experience, state.ExperienceForLevel(c.Level)))

	content.WriteString(labelStyle.Render("Items:") + "\n")
	if len(c.Inventory) == 0 {
		content.WriteString("None\n")
	}
	for _, item := range c.Inventory {
		content.WriteString("• " + item + "\n")
	}
	content.WriteString("\n")

	content.WriteString(labelStyle.Render("Wallet:") + "\n")
	if gs.Wallet.Connected {
		content.WriteString(hashStyle.Render(wallet.Short(gs.Wallet.Address)) + "\n\n")
	} else {
		content.WriteString("Not connected\n\n")
	}

	content.WriteString(labelStyle.Render("Keys:") + "\n")
	content.WriteString("• Enter: Run command\n")
	content.WriteString("• Ctrl+W: Wallet\n")
	content.WriteString("• Ctrl+Y: Copy\n")
	content.WriteString("• Esc: Quit\n")

	return content.String()
}

// writeTransaction renders the transaction modal body. bar is the rendered
// progress bar.
func writeTransaction(req txsim.Request, p txsim.Progress, bar string) string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render(req.Title()))
	content.WriteString("\n\n")
	content.WriteString(req.Description())
	content.WriteString("\n\n")

	if p.Hash != "" {
		content.WriteString(hintStyle.Render("Transaction Hash:") + "\n")
		content.WriteString(hashStyle.Render(p.Hash) + "\n\n")
	}

	content.WriteString(fmt.Sprintf("%s  %d%%\n", p.Stage.Label(), p.Percent))
	content.WriteString(bar + "\n\n")

	content.WriteString(hintStyle.Render("Transaction Details:") + "\n")
	content.WriteString(fmt.Sprintf("Type:     %s\n", req.Kind))
	if req.Item != "" {
		content.WriteString(fmt.Sprintf("Item:     %s\n", req.Item))
	}
	if req.Amount != 0 {
		content.WriteString(fmt.Sprintf("Amount:   %d\n", req.Amount))
	}
	content.WriteString(fmt.Sprintf("Gas Fee:  %g ETH\n", req.Fee()))
	content.WriteString(fmt.Sprintf("Network:  %s\n", txsim.Network))

	if p.Stage == txsim.StageConfirmed && p.Percent >= 100 {
		content.WriteString("\n" + toneStyle(engine.ToneSuccess).Render("Transaction Successful!") + "\n")
	}
	content.WriteString("\n")
	content.WriteString(hintStyle.Render("Esc to close, Ctrl+Y to copy the hash"))
	return content.String()
}
