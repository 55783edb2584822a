package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/jwebster45206/dungeon-hunt/pkg/content"
	"github.com/jwebster45206/dungeon-hunt/pkg/dice"
	"github.com/jwebster45206/dungeon-hunt/pkg/engine"
	"github.com/jwebster45206/dungeon-hunt/pkg/state"
	"github.com/jwebster45206/dungeon-hunt/pkg/txsim"
	"github.com/jwebster45206/dungeon-hunt/pkg/wallet"
)

// ConsoleUI is the BubbleTea model that runs the game in the terminal.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	interp         *engine.Interpreter
	sim            *txsim.Simulator
	rng            dice.Source
	logger         *slog.Logger
	writeClipboard func(string) error

	session *engine.Session
	txs     *txQueue

	historyViewport viewport.Model
	statusViewport  viewport.Model
	textarea        textarea.Model
	progress        progress.Model
	ready           bool
	width           int
	height          int
	notice          string

	// Class selection state
	showClassModal bool
	classes        []content.CharacterClass
	selectedClass  int

	// Quit confirmation state
	showQuitModal bool

	// Transaction modal state
	activeTx   *txView
	lastTxHash string
}

// txQueue collects transactions emitted by commands until the modal can
// show them. It is the session's notifier.
type txQueue struct {
	pending []txsim.Request
}

func (q *txQueue) Submit(_ uuid.UUID, req txsim.Request) {
	q.pending = append(q.pending, req)
}

func (q *txQueue) pop() (txsim.Request, bool) {
	if len(q.pending) == 0 {
		return txsim.Request{}, false
	}
	req := q.pending[0]
	q.pending = q.pending[1:]
	return req, true
}

// txView is the transaction currently shown in the modal.
type txView struct {
	req    txsim.Request
	last   txsim.Progress
	cancel context.CancelFunc
}

type txProgressMsg struct {
	progress txsim.Progress
	updates  <-chan tea.Msg
}

type txDoneMsg struct {
	txID uuid.UUID
	err  error
}

func NewConsoleUI(interp *engine.Interpreter, sim *txsim.Simulator, rng dice.Source, logger *slog.Logger) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(Prompt + " ")
	ta.CharLimit = 256
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	historyVp := viewport.New(50, 20)
	historyVp.MouseWheelEnabled = true

	statusVp := viewport.New(20, 20)

	tables := interp.Tables()
	classes := tables.Classes.All()
	selected := 0
	for i, c := range classes {
		if c.Key == tables.DefaultClass {
			selected = i
		}
	}

	return ConsoleUI{
		interp:          interp,
		sim:             sim,
		rng:             rng,
		logger:          logger,
		writeClipboard:  clipboard.WriteAll,
		txs:             &txQueue{},
		textarea:        ta,
		historyViewport: historyVp,
		statusViewport:  statusVp,
		progress:        progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(40)),
		showClassModal:  true,
		classes:         classes,
		selectedClass:   selected,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Transaction updates arrive whatever is on screen.
	switch msg := msg.(type) {
	case txProgressMsg:
		m.onTxProgress(msg.progress)
		return m, waitForTx(msg.updates)
	case txDoneMsg:
		return m, m.onTxDone(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.session != nil {
			m.layout()
		}
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.showClassModal {
		return m.updateClassModal(msg)
	}
	if m.activeTx != nil {
		return m.updateTxModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.historyViewport, vpCmd = m.historyViewport.Update(msg)
		return m, vpCmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlW:
			m.toggleWallet()
			return m, nil
		case tea.KeyCtrlY:
			m.copyToClipboard()
			return m, nil
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			return m, m.submit(input)
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.historyViewport, vpCmd = m.historyViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd)
}

// submit runs one command through the session and starts any transaction
// it emitted.
func (m *ConsoleUI) submit(input string) tea.Cmd {
	resp := m.session.Submit(input)
	m.notice = ""
	m.logger.Debug("Command applied",
		"command", resp.Command,
		"tone", resp.Tone,
		"transactions", len(resp.Transactions))

	m.refresh()
	return m.startNextTx()
}

func (m *ConsoleUI) startGame(class content.CharacterClass) error {
	gs, err := state.NewGameState(m.interp.Tables(), "", class.Key)
	if err != nil {
		return err
	}
	m.session = engine.NewSession(m.interp, gs, m.txs)
	m.showClassModal = false
	m.logger.Info("Game started", "gamestate_id", gs.ID, "class", class.Key)
	m.layout()
	m.textarea.Focus()
	m.ready = true
	return nil
}

func (m *ConsoleUI) toggleWallet() {
	if m.session.State().Wallet.Connected {
		m.session.DisconnectWallet()
		m.notice = "Wallet disconnected."
	} else {
		addr := wallet.NewAddress(m.rng)
		m.session.ConnectWallet(addr)
		m.notice = "Wallet connected: " + wallet.Short(addr)
	}
	m.refresh()
}

// copyTarget is the open transaction's hash, else the wallet address, else
// the last transaction hash.
func (m ConsoleUI) copyTarget() string {
	if m.activeTx != nil && m.activeTx.last.Hash != "" {
		return m.activeTx.last.Hash
	}
	if m.session != nil {
		if w := m.session.State().Wallet; w.Connected {
			return w.Address
		}
	}
	return m.lastTxHash
}

func (m *ConsoleUI) copyToClipboard() {
	text := m.copyTarget()
	if text == "" {
		m.notice = "Nothing to copy."
		return
	}
	if err := m.writeClipboard(text); err != nil {
		m.logger.Warn("Failed to copy to clipboard", "error", err)
		m.notice = "Clipboard unavailable."
		return
	}
	m.notice = "Copied " + wallet.Short(text)
}

// startNextTx opens the modal for the next queued transaction and starts
// its simulation. It does nothing while a modal is open.
func (m *ConsoleUI) startNextTx() tea.Cmd {
	if m.activeTx != nil {
		return nil
	}
	req, ok := m.txs.pop()
	if !ok {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan tea.Msg)
	sim := m.sim
	go func() {
		defer close(updates)
		err := sim.Run(ctx, req, func(p txsim.Progress) {
			select {
			case updates <- txProgressMsg{progress: p, updates: updates}:
			case <-ctx.Done():
			}
		})
		updates <- txDoneMsg{txID: req.ID, err: err}
	}()

	m.activeTx = &txView{
		req:    req,
		last:   txsim.Progress{TxID: req.ID, Kind: req.Kind, Stage: txsim.StagePending},
		cancel: cancel,
	}
	m.logger.Debug("Transaction started", "tx_id", req.ID, "kind", req.Kind)
	return waitForTx(updates)
}

// waitForTx delivers the next message from a running simulation.
func waitForTx(updates <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-updates
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *ConsoleUI) onTxProgress(p txsim.Progress) {
	if m.activeTx == nil || m.activeTx.req.ID != p.TxID {
		return // closed early
	}
	m.activeTx.last = p
	if p.Hash != "" {
		m.lastTxHash = p.Hash
	}
}

func (m *ConsoleUI) onTxDone(msg txDoneMsg) tea.Cmd {
	if m.activeTx == nil || m.activeTx.req.ID != msg.txID {
		return nil
	}
	m.activeTx.cancel()
	m.activeTx = nil
	if msg.err != nil {
		m.logger.Warn("Transaction simulation stopped", "tx_id", msg.txID, "error", msg.err)
	} else {
		m.notice = "Transaction confirmed: " + wallet.Short(m.lastTxHash)
	}
	return m.startNextTx()
}

// closeTx cancels the open transaction; its simulation drains in the
// background.
func (m *ConsoleUI) closeTx() tea.Cmd {
	if m.activeTx == nil {
		return nil
	}
	m.activeTx.cancel()
	m.logger.Debug("Transaction closed early", "tx_id", m.activeTx.req.ID)
	m.activeTx = nil
	return m.startNextTx()
}

// layout sizes the panels for the current window.
func (m *ConsoleUI) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	historyWidth := int(float64(m.width)*0.7) - 4
	statusWidth := m.width - historyWidth - 6

	m.historyViewport.Width = historyWidth - 2
	m.historyViewport.Height = m.height - 6
	m.statusViewport.Width = statusWidth - 2
	m.statusViewport.Height = m.height - 2
	m.textarea.SetWidth(historyWidth - 4)
	m.progress.Width = min(40, max(10, m.width/2-8))
	m.refresh()
}

// refresh redraws the history and status panels from the session.
func (m *ConsoleUI) refresh() {
	if m.session == nil {
		return
	}
	m.historyViewport.SetContent(writeHistory(m.session.History(), m.historyViewport.Width-6))
	m.historyViewport.GotoBottom()
	m.statusViewport.SetContent(writeStatus(m.session.State(), m.interp.Tables()))
}

func (m ConsoleUI) updateClassModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.showQuitModal = true
	case tea.KeyUp:
		if m.selectedClass > 0 {
			m.selectedClass--
		}
	case tea.KeyDown:
		if m.selectedClass < len(m.classes)-1 {
			m.selectedClass++
		}
	case tea.KeyEnter:
		if len(m.classes) == 0 {
			return m, nil
		}
		if err := m.startGame(m.classes[m.selectedClass]); err != nil {
			m.logger.Error("Failed to start game", "error", err)
			m.notice = err.Error()
			return m, nil
		}
		return m, textarea.Blink
	}
	return m, nil
}

func (m ConsoleUI) updateTxModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyEsc:
		return m, m.closeTx()
	case tea.KeyCtrlY:
		m.copyToClipboard()
	case tea.KeyCtrlC:
		m.showQuitModal = true
	}
	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
		return m.quit()
	default:
		switch keyMsg.String() {
		case "y", "Y":
			return m.quit()
		case "n", "N":
			m.showQuitModal = false
			if m.showClassModal || m.activeTx != nil {
				return m, nil
			}
			m.textarea.Focus()
			return m, textarea.Blink
		}
	}
	return m, nil
}

func (m ConsoleUI) quit() (tea.Model, tea.Cmd) {
	if m.activeTx != nil {
		m.activeTx.cancel()
	}
	return m, tea.Quit
}

func (m ConsoleUI) renderClassModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Welcome to Dungeon Hunt - Web3 Edition!"))
	content.WriteString("\n\n")
	content.WriteString("Choose your class:\n\n")

	for i, class := range m.classes {
		line := fmt.Sprintf("%-8s HP %d  MP %d  ATK %d  DEF %d  MAG %d",
			class.Name, class.HP, class.MP, class.Attack, class.Defense, class.Magic)
		if i == m.selectedClass {
			content.WriteString(modalSelectedItemStyle.Render("▶ " + line))
		} else {
			content.WriteString(modalItemStyle.Render("  " + line))
		}
		content.WriteString("\n")
	}

	if m.notice != "" {
		content.WriteString("\n" + toneStyle(engine.ToneFailure).Render(m.notice) + "\n")
	}
	content.WriteString("\n")
	content.WriteString(hintStyle.Render("Use ↑/↓ to navigate, Enter to select, Esc to exit"))

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave the dungeon?")
	content.WriteString("\n\n")
	content.WriteString(hintStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderTxModal() string {
	tx := m.activeTx
	bar := m.progress.ViewAs(float64(tx.last.Percent) / 100)
	modal := modalStyle.Width(64).Render(writeTransaction(tx.req, tx.last, bar))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.width == 0 || m.height == 0 {
		return "\n  Initializing..."
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.showClassModal {
		return m.renderClassModal()
	}
	if m.activeTx != nil {
		return m.renderTxModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	historyWidth := int(float64(m.width)*0.7) - 4
	statusWidth := m.width - historyWidth - 6

	notice := hintStyle.Render(m.notice)
	historyPanel := historyPanelStyle.Width(historyWidth).Height(m.height - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.historyViewport.View(),
			notice,
			separatorStyle.Render(strings.Repeat("─", max(historyWidth-4, 1))),
			m.textarea.View(),
		),
	)

	statusPanel := statusPanelStyle.Width(statusWidth).Height(m.height - 2).Render(
		m.statusViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, historyPanel, statusPanel)
}
