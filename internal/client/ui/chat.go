package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ChatLine is one rendered entry in the chat transcript.
type ChatLine struct {
	Sender string
	Body   string
	Local  bool
	System bool
}

type chatLineMsg ChatLine

type chatQuitMsg struct{}

// ChatUI runs the in-call chat view: a scrollback transcript above a
// single-line composer. Lines arrive from outside through AppendLine, so
// network pumps never touch the model directly.
type ChatUI struct {
	program *tea.Program
	onSend  func(body string)
}

type chatModel struct {
	viewport viewport.Model
	input    textinput.Model
	lines    []string
	roomID   string
	onSend   func(body string)
	ready    bool
	quitting bool
}

// NewChatUI creates the chat view. onSend is invoked with the composed
// text when the user submits a line; the transcript shows the message
// only once the relay echoes it back.
func NewChatUI(onSend func(body string)) *ChatUI {
	return &ChatUI{onSend: onSend}
}

// Run blocks until the user quits the chat view.
func (c *ChatUI) Run(roomID string) error {
	input := textinput.New()
	input.Placeholder = "Type a message and press enter"
	input.Prompt = LocalSenderStyle.Render("> ")
	input.CharLimit = 1024
	input.Focus()

	model := chatModel{
		input:  input,
		roomID: roomID,
		onSend: c.onSend,
	}

	c.program = tea.NewProgram(model)
	_, err := c.program.Run()
	return err
}

// AppendLine adds a transcript entry. Safe to call from any goroutine.
func (c *ChatUI) AppendLine(line ChatLine) {
	if c.program != nil {
		c.program.Send(chatLineMsg(line))
	}
}

// Quit closes the chat view.
func (c *ChatUI) Quit() {
	if c.program != nil {
		c.program.Send(chatQuitMsg{})
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		inputHeight := 3
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-inputHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - inputHeight
		}
		m.input.Width = msg.Width - 4
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			body := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if body != "" && m.onSend != nil {
				m.onSend(body)
			}
			return m, nil
		}

	case chatLineMsg:
		m.lines = append(m.lines, renderChatLine(ChatLine(msg)))
		m.refreshTranscript()
		return m, nil

	case chatQuitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	var inputCmd, viewCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.viewport, viewCmd = m.viewport.Update(msg)
	return m, tea.Batch(inputCmd, viewCmd)
}

func (m chatModel) View() string {
	if m.quitting {
		return MutedStyle.Render("Left the room.") + "\n"
	}
	if !m.ready {
		return fmt.Sprintf("%s Connecting chat...", IconWaiting)
	}

	header := TitleStyle.Render(fmt.Sprintf("%s Room %s", IconChat, m.roomID))
	footer := MutedStyle.Render("enter to send, esc to leave")
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		m.input.View(),
		footer,
	)
}

func (m *chatModel) refreshTranscript() {
	if !m.ready {
		return
	}
	if len(m.lines) == 0 {
		m.viewport.SetContent(MutedStyle.Render("No messages yet."))
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func renderChatLine(line ChatLine) string {
	if line.System {
		return MutedStyle.Render(fmt.Sprintf("-- %s", line.Body))
	}
	style := SenderStyle
	if line.Local {
		style = LocalSenderStyle
	}
	return fmt.Sprintf("%s %s", style.Render(line.Sender+":"), line.Body)
}
