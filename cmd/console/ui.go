package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/chronicle-engine/pkg/chat"
	"github.com/jwebster45206/chronicle-engine/pkg/state"
	"github.com/jwebster45206/chronicle-engine/pkg/storage"
	"github.com/muesli/reflow/wordwrap"
)

const (
	AgentName       = "Narrator"
	PlaceHolderText = "What do you do? (a number picks a suggestion)"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	api          *APIClient
	gameState    *state.GameState
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool
	pending      string   // action sent, awaiting the narrator
	notices      []string // local lines shown below the story

	// Save slot selection state
	showSlotModal bool
	slots         []storage.GameStateInfo
	selectedSlot  int
	loadingSlots  bool

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type turnResultMsg struct {
	result *chat.TurnResult
	err    error
}

type gameStateMsg struct {
	gameState *state.GameState
	err       error
}

type slotsLoadedMsg struct {
	slots []storage.GameStateInfo
	err   error
}

type noticeMsg struct {
	text string
	err  error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

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
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

// NewConsoleUI starts on the save slot modal unless a game is given.
func NewConsoleUI(cfg *ConsoleConfig, api *APIClient, gs *state.GameState) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = chat.MaxMessageLength
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:        cfg,
		api:           api,
		gameState:     gs,
		textarea:      ta,
		chatViewport:  chatVp,
		metaViewport:  metaVp,
		showSlotModal: gs == nil,
		loadingSlots:  gs == nil,
	}
}

func writeMetadata(gs *state.GameState) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("CHARACTER") + "\n\n")

	c := gs.Character
	if c == nil {
		content.WriteString("No character yet.\n")
		return content.String()
	}

	content.WriteString(c.Name + "\n")
	if c.Title != "" {
		content.WriteString(c.Title + "\n")
	}
	level := fmt.Sprintf("Level %d", c.Level)
	if c.LevelName != "" {
		level += " · " + c.LevelName
	}
	content.WriteString(level + "\n\n")

	fmt.Fprintf(&content, "HP:   %d/%d\n", c.HP, c.MaxHP)
	fmt.Fprintf(&content, "Mana: %d/%d\n", c.Mana, c.MaxMana)
	fmt.Fprintf(&content, "Exp:  %d/%d\n", c.Exp, c.ExpToNextLevel)
	fmt.Fprintf(&content, "Turn: %d\n\n", gs.TurnCount)

	if len(c.ActiveStatuses) > 0 {
		content.WriteString("Statuses:\n")
		for _, t := range c.ActiveStatuses {
			if t.Duration != nil {
				fmt.Fprintf(&content, "• %s (%d)\n", t.Name, *t.Duration)
			} else {
				fmt.Fprintf(&content, "• %s\n", t.Name)
			}
		}
		content.WriteString("\n")
	}

	var gear []string
	for _, it := range c.Inventory {
		if it.Category == state.CategoryEquipment {
			mark := " "
			if it.IsEquipped {
				mark = "*"
			}
			gear = append(gear, fmt.Sprintf("%s %s [%s]", mark, it.Name, it.ID))
		}
	}
	if len(gear) > 0 {
		content.WriteString("Equipment:\n")
		for _, g := range gear {
			content.WriteString(g + "\n")
		}
		content.WriteString("\n")
	}

	if len(c.Skills) > 0 {
		content.WriteString("Skills:\n")
		for _, sk := range c.Skills {
			fmt.Fprintf(&content, "• %s (%s) [%s]\n", sk.Name, sk.Type, sk.ID)
		}
		content.WriteString("\n")
	}

	var quests []string
	for _, q := range c.Quests {
		if q.Status == state.QuestActive {
			quests = append(quests, q.Name)
		}
	}
	if len(quests) > 0 {
		content.WriteString("Quests:\n")
		for _, q := range quests {
			content.WriteString("• " + q + "\n")
		}
		content.WriteString("\n")
	}

	if len(gs.SuggestedActions) > 0 {
		content.WriteString("Suggestions:\n")
		for i, a := range gs.SuggestedActions {
			fmt.Fprintf(&content, "%d. %s\n", i+1, a)
		}
		content.WriteString("\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Ctrl+Y: Copy narrative\n")
	content.WriteString("• /help: Help\n")

	return content.String()
}

// writeChatContent builds the story log from game state for the current viewport width
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding

	var content strings.Builder
	content.WriteString(titleStyle.Render("CHRONICLE ENGINE") + "\n\n")
	if m.gameState != nil && m.gameState.World != nil {
		content.WriteString(m.gameState.World.Name + " · " + m.gameState.World.Genre + "\n\n")
	}
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	if m.gameState != nil {
		for _, entry := range m.gameState.History {
			if entry.Action != "" {
				content.WriteString(userStyle.Render("You: ") + wordwrap.String(entry.Action, chatWidth-6) + "\n\n")
			}
			text := entry.Narrative
			if text == "" {
				text = entry.Result
			}
			content.WriteString(formatNarratorResponse(text, chatWidth) + "\n\n")
		}
		if m.gameState.Phase == state.PhaseGameOver {
			content.WriteString(errorStyle.Render("GAME OVER: "+m.gameState.GameOverReason) + "\n\n")
		}
	}

	if m.pending != "" {
		content.WriteString(userStyle.Render("You: ") + wordwrap.String(m.pending, chatWidth-6) + "\n\n")
	}
	for _, n := range m.notices {
		content.WriteString(n + "\n\n")
	}

	// If currently loading, add the progress bar
	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) notice(text string) {
	m.notices = append(m.notices, text)
	m.writeChatContent()
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showSlotModal {
		return m.loadSlots()
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle slot modal first
	if m.showSlotModal {
		return m.updateSlotModal(msg)
	}

	// Handle quit modal second
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeChatContent()
		if m.gameState != nil {
			m.metaViewport.SetContent(writeMetadata(m.gameState))
		}

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			if m.gameState != nil && m.gameState.LastNarrative != "" {
				if err := clipboard.WriteAll(m.gameState.LastNarrative); err != nil {
					m.notice(errorStyle.Render("Copy failed: " + err.Error()))
				} else {
					m.notice(promptStyle.Render("Narrative copied to clipboard."))
				}
			}
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}
			if m.gameState.Phase == state.PhaseGameOver {
				m.notice(errorStyle.Render("The story has ended. Press Ctrl+C to quit."))
				return m, nil
			}
			if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(m.gameState.SuggestedActions) {
				input = m.gameState.SuggestedActions[n-1]
			}

			m.loading = true
			m.pending = input
			m.notices = nil
			m.progressTick = 0 // Reset progress animation
			m.writeChatContent()

			return m, tea.Batch(m.sendTurn(input), progressTick())
		}

	case turnResultMsg:
		m.loading = false
		m.pending = ""
		if msg.err != nil {
			m.err = msg.err
			m.notice(errorStyle.Render("Error: " + msg.err.Error()))
			return m, nil
		}
		if msg.result.GameState != nil {
			m.gameState = msg.result.GameState
		}
		m.writeChatContent()
		m.metaViewport.SetContent(writeMetadata(m.gameState))
		return m, nil

	case gameStateMsg:
		m.loading = false
		if msg.err != nil {
			m.notice(errorStyle.Render("Error: " + msg.err.Error()))
		} else if msg.gameState != nil {
			m.gameState = msg.gameState
			m.metaViewport.SetContent(writeMetadata(m.gameState))
			m.writeChatContent()
		}

	case noticeMsg:
		if msg.err != nil {
			m.notice(errorStyle.Render("Error: " + msg.err.Error()))
		} else {
			m.notice(promptStyle.Render(msg.text))
		}

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()     // Refresh the chat content to update the progress bar
			return m, progressTick() // Continue the animation
		}
	}

	// Update components for non-mouse events
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func formatNarratorResponse(response string, width int) string {
	wrapWidth := max(width-len(AgentName)-2, 10)
	wrappedResponse := wordwrap.String(response, wrapWidth)
	lines := strings.Split(wrappedResponse, "\n")
	formattedLines := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if idx := strings.Index(trimmed, ":"); idx > 0 && idx <= 20 {
			speaker := trimmed[:idx]
			if len(strings.Fields(speaker)) <= 2 {
				formattedLines = append(formattedLines, speakerStyle.Render(speaker+":")+trimmed[idx+1:])
				continue
			}
		}
		formattedLines = append(formattedLines, line)
	}

	return narratorStyle.Render(AgentName+": ") + strings.Join(formattedLines, "\n")
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "/help":
		m.notice(titleStyle.Render("Help:") + `
• /sync - Reconcile the character sheet with the last scene
• /note <text> - Save an important note for the narrator
• /rules <rule>; <rule> - Replace the custom rules
• /equip <item id> - Equip or unequip an item
• /fuse <skill id> <skill id>... - Fuse skills of one type
• /refresh - Reload the game state
• Ctrl+Y - Copy the last narrative
• Ctrl+C - Quit game

Type your actions and press Enter. A number sends that suggestion.`)
		return m, nil

	case "/sync":
		m.loading = true
		m.progressTick = 0
		m.writeChatContent()
		return m, tea.Batch(m.sendSync(), progressTick())

	case "/note":
		if arg == "" {
			m.notice(errorStyle.Render("Usage: /note <text>"))
			return m, nil
		}
		return m, m.addNote(arg)

	case "/rules":
		var rules []string
		for r := range strings.SplitSeq(arg, ";") {
			rules = append(rules, strings.TrimSpace(r))
		}
		return m, m.setRules(rules)

	case "/equip":
		if arg == "" {
			m.notice(errorStyle.Render("Usage: /equip <item id>"))
			return m, nil
		}
		return m, m.toggleEquip(arg)

	case "/fuse":
		ids := strings.Fields(arg)
		if len(ids) < 2 {
			m.notice(errorStyle.Render("Usage: /fuse <skill id> <skill id>..."))
			return m, nil
		}
		m.loading = true
		m.progressTick = 0
		m.writeChatContent()
		return m, tea.Batch(m.fuseSkills(ids), progressTick())

	case "/refresh":
		return m, m.refreshGameState()
	}

	m.notice(errorStyle.Render("Unknown command " + cmd + ". Try /help."))
	return m, nil
}

func (m ConsoleUI) sendTurn(action string) tea.Cmd {
	id := m.gameState.ID
	return func() tea.Msg {
		res, err := m.api.Turn(id, action)
		return turnResultMsg{res, err}
	}
}

func (m ConsoleUI) sendSync() tea.Cmd {
	id := m.gameState.ID
	return func() tea.Msg {
		res, err := m.api.Sync(id)
		return turnResultMsg{res, err}
	}
}

func (m ConsoleUI) addNote(content string) tea.Cmd {
	id := m.gameState.ID
	return func() tea.Msg {
		_, err := m.api.AddNote(id, content, true)
		return noticeMsg{"Note saved.", err}
	}
}

func (m ConsoleUI) setRules(rules []string) tea.Cmd {
	id := m.gameState.ID
	return func() tea.Msg {
		gs, err := m.api.SetRules(id, rules)
		if err != nil {
			return noticeMsg{err: err}
		}
		return noticeMsg{text: fmt.Sprintf("%d custom rules active.", len(gs.CustomRules))}
	}
}

func (m ConsoleUI) toggleEquip(itemID string) tea.Cmd {
	id := m.gameState.ID
	return func() tea.Msg {
		gs, err := m.api.ToggleEquip(id, itemID)
		return gameStateMsg{gs, err}
	}
}

func (m ConsoleUI) fuseSkills(skillIDs []string) tea.Cmd {
	id := m.gameState.ID
	return func() tea.Msg {
		gs, err := m.api.FuseSkills(id, skillIDs)
		return gameStateMsg{gs, err}
	}
}

func (m ConsoleUI) refreshGameState() tea.Cmd {
	id := m.gameState.ID
	return func() tea.Msg {
		gs, err := m.api.GetGame(id)
		return gameStateMsg{gs, err}
	}
}

func (m ConsoleUI) loadSlots() tea.Cmd {
	return func() tea.Msg {
		infos, err := m.api.ListGames()
		if err != nil {
			return slotsLoadedMsg{err: err}
		}
		playable := make([]storage.GameStateInfo, 0, len(infos))
		for _, info := range infos {
			if info.Phase == state.PhasePlaying || info.Phase == state.PhaseGameOver {
				playable = append(playable, info)
			}
		}
		return slotsLoadedMsg{slots: playable}
	}
}

func (m ConsoleUI) loadSlot(info storage.GameStateInfo) tea.Cmd {
	return func() tea.Msg {
		gs, err := m.api.GetGame(info.ID)
		return gameStateMsg{gs, err}
	}
}

func (m ConsoleUI) updateSlotModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case slotsLoadedMsg:
		m.loadingSlots = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.slots = msg.slots
		}

	case gameStateMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.gameState = msg.gameState
		m.showSlotModal = false
		if m.width > 0 && m.height > 0 {
			m.resize()
		}
		m.writeChatContent()
		m.metaViewport.SetContent(writeMetadata(m.gameState))
		m.textarea.Focus() // Ensure textarea gets focus when modal closes
		m.ready = true
		return m, textarea.Blink

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.selectedSlot > 0 {
				m.selectedSlot--
			}
		case tea.KeyDown:
			if m.selectedSlot < len(m.slots)-1 {
				m.selectedSlot++
			}
		case tea.KeyEnter:
			if !m.loadingSlots && m.err == nil && len(m.slots) > 0 {
				m.loading = true
				return m, m.loadSlot(m.slots[m.selectedSlot])
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Your progress is saved after every turn.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderSlotModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingSlots:
		content.WriteString(modalTitleStyle.Render("Loading Saves..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch your adventures..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to load saves: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Loading Game..."))
	case len(m.slots) == 0:
		content.WriteString(modalTitleStyle.Render("No Saved Games"))
		content.WriteString("\n\n")
		content.WriteString("Start one with: console -new game.json")
		content.WriteString("\n\n")
		content.WriteString(promptStyle.Render("Press Ctrl+C to exit"))
	default:
		content.WriteString(modalTitleStyle.Render("Continue an Adventure"))
		content.WriteString("\n\n")

		for i, slot := range m.slots {
			label := fmt.Sprintf("%s · %s · turn %d", slot.CharacterName, slot.WorldName, slot.TurnCount)
			if slot.Phase == state.PhaseGameOver {
				label += " (ended)"
			}
			if i == m.selectedSlot {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
			} else {
				content.WriteString(modalItemStyle.Render("  " + label))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showSlotModal {
		return m.renderSlotModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"", // Add empty line for spacing
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30 // fallback before sizing
	}
	usable = min(max(usable, 10), 80)

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := range usable {
		switch {
		case i < filled:
			bar.WriteString("█")
		case i == filled && frame%4 < 2:
			bar.WriteString("▓") // Blinking effect at the progress point
		default:
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
