package models

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	appmodels "github.com/mohamedMoujib/E-Health-sub000/internal/models"
	"github.com/mohamedMoujib/E-Health-sub000/internal/session"
	"github.com/mohamedMoujib/E-Health-sub000/internal/tui/styles"
)

type loginResultMsg struct {
	user appmodels.User
	err  error
}

type LoginModel struct {
	ctx        *Ctx
	inputs     []textinput.Model
	focusIndex int
	submitting bool
	errMessage string
}

func NewLoginModel(ctx *Ctx) LoginModel {
	email := textinput.New()
	email.Placeholder = "Email"
	email.Focus()
	email.CharLimit = 100
	email.Width = 40

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 100
	password.Width = 40

	return LoginModel{
		ctx:    ctx,
		inputs: []textinput.Model{email, password},
	}
}

func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab", "shift+tab", "up", "down":
			if msg.String() == "up" || msg.String() == "shift+tab" {
				m.focusIndex--
			} else {
				m.focusIndex++
			}
			if m.focusIndex < 0 {
				m.focusIndex = len(m.inputs) - 1
			}
			if m.focusIndex >= len(m.inputs) {
				m.focusIndex = 0
			}
			cmds := make([]tea.Cmd, len(m.inputs))
			for i := range m.inputs {
				if i == m.focusIndex {
					cmds[i] = m.inputs[i].Focus()
				} else {
					m.inputs[i].Blur()
				}
			}
			return m, tea.Batch(cmds...)

		case "enter":
			if m.submitting {
				return m, nil
			}
			email := strings.TrimSpace(m.inputs[0].Value())
			password := m.inputs[1].Value()
			if email == "" || password == "" {
				m.errMessage = "Email and password are required"
				return m, nil
			}
			m.submitting = true
			m.errMessage = ""
			return m, m.loginCmd(email, password)
		}

	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMessage = msg.err.Error()
			return m, nil
		}

		m.ctx.User = msg.user
		if m.ctx.Connect != nil {
			m.ctx.Connect(msg.user)
		}
		next := NewChatsModel(m.ctx)
		return next, next.Init()
	}

	var cmds []tea.Cmd
	for i := range m.inputs {
		var cmd tea.Cmd
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m LoginModel) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := m.ctx.API.Login(email, password)
		if err != nil {
			return loginResultMsg{err: err}
		}
		// Persist the session; login success is the one path that clears
		// the logged-out flag.
		rec := session.Record{
			UserID:       user.ID,
			UserName:     user.Name,
			AccessToken:  m.ctx.API.AccessToken(),
			RefreshToken: m.ctx.API.RefreshToken(),
			LoggedOut:    false,
		}
		if err := m.ctx.Sessions.Save(rec); err != nil {
			m.ctx.Log.Error().Err(err).Msg("tui: failed to persist session")
		}
		return loginResultMsg{user: user}
	}
}

func (m LoginModel) View() string {
	var sb strings.Builder

	sb.WriteString(styles.TitleStyle.Render("E-Health") + "\n")
	sb.WriteString(styles.SubtitleStyle.Render("Sign in to your practice") + "\n\n")

	for i := range m.inputs {
		sb.WriteString(m.inputs[i].View() + "\n")
	}

	if m.submitting {
		sb.WriteString("\n" + styles.StatusInfoStyle.Render("Signing in..."))
	}
	if m.errMessage != "" {
		sb.WriteString("\n" + styles.StatusErrorStyle.Render(m.errMessage))
	}

	sb.WriteString("\n" + styles.HelpStyle.Render("[Enter] Sign in | [Tab] Next field | [Esc] Quit"))
	return styles.ContainerStyle.Render(sb.String())
}
