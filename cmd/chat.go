package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bnema/chatfs/internal/adapters/render/chatview"
	"github.com/bnema/chatfs/internal/application"
	"github.com/bnema/chatfs/internal/domain"
)

func newChatCmd(app *app) *cobra.Command {
	var rootDir string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long:  "chat opens a conversational loop over the workspace. Slash commands drive file operations, anything else is answered by the model; staged operations are confirmed with y and dropped with n.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, app, rootDir)
		},
	}

	cmd.Flags().StringVar(&rootDir, "root", app.cfg.GetString("root"), "Workspace root directory")

	return cmd
}

func runChat(cmd *cobra.Command, app *app, rootDir string) error {
	o, err := app.newSession(rootDir)
	if err != nil {
		return err
	}
	startedAt := app.now()

	p := tea.NewProgram(
		newChatModel(cmd.Context(), o),
		tea.WithContext(cmd.Context()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := p.Run(); err != nil {
		return err
	}

	return app.archiveSession(cmd.Context(), o, uuid.NewString(), startedAt)
}

type turnDoneMsg struct {
	events []domain.Event
}

type chatModel struct {
	ctx          context.Context
	orchestrator *application.Orchestrator

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	blocks    []string
	pendingID string
	waiting   bool
	ready     bool

	userStyle   lipgloss.Style
	hintStyle   lipgloss.Style
	promptStyle lipgloss.Style
}

func newChatModel(ctx context.Context, o *application.Orchestrator) chatModel {
	input := textinput.New()
	input.Placeholder = "message or /command"
	input.Prompt = "> "
	input.Focus()

	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	hintStyle := lipgloss.NewStyle().Faint(true)

	return chatModel{
		ctx:          ctx,
		orchestrator: o,
		input:        input,
		spinner:      s,
		blocks: []string{
			hintStyle.Render(fmt.Sprintf("workspace: %s", o.Root())),
			hintStyle.Render("commands: /read /list /create /write /delete /context (esc quits)"),
		},
		userStyle:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")),
		hintStyle:   hintStyle,
		promptStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(msg.Height-2, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.input.Width = max(msg.Width-4, 10)
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case turnDoneMsg:
		m.waiting = false
		m.pendingID = pendingIDFrom(msg.events)
		m.appendBlock(chatview.RenderEvents(msg.events))
		return m, nil
	}

	return m, nil
}

func (m chatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.waiting {
		return m, nil
	}

	if m.pendingID != "" {
		switch strings.ToLower(msg.String()) {
		case "y":
			return m.resolvePending(true)
		case "n":
			return m.resolvePending(false)
		}
		return m, nil
	}

	if msg.Type == tea.KeyEnter {
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		m.waiting = true
		m.appendBlock(m.userStyle.Render("you ") + text)
		return m, tea.Batch(m.spinner.Tick, m.submit(text))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) submit(text string) tea.Cmd {
	ctx, o := m.ctx, m.orchestrator
	return func() tea.Msg {
		return turnDoneMsg{events: o.HandleMessage(ctx, text)}
	}
}

func (m chatModel) resolvePending(confirmed bool) (tea.Model, tea.Cmd) {
	id := m.pendingID
	m.pendingID = ""
	m.waiting = true

	ctx, o := m.ctx, m.orchestrator
	work := func() tea.Msg {
		if confirmed {
			return turnDoneMsg{events: o.Confirm(ctx, id)}
		}
		return turnDoneMsg{events: o.Discard(id)}
	}
	return m, tea.Batch(m.spinner.Tick, work)
}

func (m *chatModel) appendBlock(block string) {
	m.blocks = append(m.blocks, block)
	m.refreshViewport()
}

func (m *chatModel) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.blocks, "\n"))
	m.viewport.GotoBottom()
}

func (m chatModel) View() string {
	if !m.ready {
		return "starting chat..."
	}
	return fmt.Sprintf("%s\n%s", m.viewport.View(), m.footer())
}

func (m chatModel) footer() string {
	switch {
	case m.waiting:
		return m.spinner.View() + " waiting for the model..."
	case m.pendingID != "":
		return m.promptStyle.Render("apply staged operation? y/n")
	default:
		return m.input.View()
	}
}

// pendingIDFrom picks the id the next y/n answer resolves. At most one
// proposal per turn can stage, so the last one wins.
func pendingIDFrom(events []domain.Event) string {
	id := ""
	for _, event := range events {
		switch e := event.(type) {
		case domain.PreviewEvent:
			id = e.ID
		case domain.ConfirmationPromptEvent:
			id = e.ID
		}
	}
	return id
}
