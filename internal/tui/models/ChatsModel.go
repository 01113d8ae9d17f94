package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	appmodels "github.com/mohamedMoujib/E-Health-sub000/internal/models"
	"github.com/mohamedMoujib/E-Health-sub000/internal/tui/styles"
	"github.com/mohamedMoujib/E-Health-sub000/internal/utils"
)

const maxVisibleMessages = 12

type chatsLoadedMsg struct{ err error }
type messagesLoadedMsg struct{ err error }
type messageSentMsg struct{ err error }
type toastExpiredMsg struct{}

type ChatsModel struct {
	ctx         *Ctx
	input       textarea.Model
	selectedIdx int
	composing   bool
	scrollIndex int
	width       int
	status      string
	statusStyle lipgloss.Style
	toast       string
}

func NewChatsModel(ctx *Ctx) ChatsModel {
	input := textarea.New()
	input.Placeholder = "Type a message..."
	input.SetWidth(60)
	input.SetHeight(3)
	input.CharLimit = 500

	return ChatsModel{
		ctx:         ctx,
		input:       input,
		status:      "Loading conversations...",
		statusStyle: styles.StatusInfoStyle,
	}
}

func (m ChatsModel) Init() tea.Cmd {
	return tea.Batch(m.loadChatsCmd(), utils.GetSizeCmd())
}

func (m ChatsModel) loadChatsCmd() tea.Cmd {
	return func() tea.Msg {
		return chatsLoadedMsg{err: m.ctx.Chats.FetchChats()}
	}
}

func (m ChatsModel) openChatCmd(chat appmodels.Chat) tea.Cmd {
	return func() tea.Msg {
		m.ctx.Chats.SelectChat(&chat)
		return messagesLoadedMsg{err: m.ctx.Chats.FetchMessages(chat.ID)}
	}
}

func (m ChatsModel) sendCmd(chatID, content string) tea.Cmd {
	return func() tea.Msg {
		return messageSentMsg{err: m.ctx.Chats.SendText(chatID, content)}
	}
}

func (m ChatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.composing {
			switch msg.String() {
			case "esc":
				m.composing = false
				m.input.Blur()
				return m, nil
			case "ctrl+s":
				content := strings.TrimSpace(m.input.Value())
				selected := m.ctx.Chats.Selected()
				if content == "" || selected == nil {
					return m, nil
				}
				m.input.Reset()
				m.status = "Sending..."
				m.statusStyle = styles.StatusInfoStyle
				return m, m.sendCmd(selected.ID, content)
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "up", "k":
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		case "down", "j":
			chats := m.ctx.Chats.Chats()
			if m.selectedIdx < len(chats)-1 {
				m.selectedIdx++
			}
		case "enter":
			chats := m.ctx.Chats.Chats()
			if len(chats) == 0 {
				return m, nil
			}
			chat := chats[m.selectedIdx]
			m.status = "Loading messages..."
			m.statusStyle = styles.StatusInfoStyle
			return m, m.openChatCmd(chat)
		case "tab", "i":
			if m.ctx.Chats.Selected() != nil {
				m.composing = true
				return m, m.input.Focus()
			}
		case "n":
			next := NewNotificationsModel(m.ctx)
			return next, next.Init()
		case "r":
			return m, m.loadChatsCmd()
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case chatsLoadedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			m.statusStyle = styles.StatusErrorStyle
			return m, nil
		}
		m.status = fmt.Sprintf("%d conversations", len(m.ctx.Chats.Chats()))
		m.statusStyle = styles.StatusInfoStyle
		return m, nil

	case messagesLoadedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			m.statusStyle = styles.StatusErrorStyle
			return m, nil
		}
		msgs := m.ctx.Chats.Messages()
		m.scrollIndex = len(msgs) - maxVisibleMessages
		if m.scrollIndex < 0 {
			m.scrollIndex = 0
		}
		m.status = ""
		return m, nil

	case messageSentMsg:
		if msg.err != nil {
			// No retry affordance for sends; the error text is all there is.
			m.status = msg.err.Error()
			m.statusStyle = styles.StatusErrorStyle
			return m, nil
		}
		// The sent message itself arrives via the socket echo.
		m.status = ""
		return m, nil

	case IncomingMessageMsg:
		msgs := m.ctx.Chats.Messages()
		m.scrollIndex = len(msgs) - maxVisibleMessages
		if m.scrollIndex < 0 {
			m.scrollIndex = 0
		}
		return m, nil

	case IncomingNotificationMsg:
		playCue(m.ctx.Sound)
		m.toast = msg.Notification.Title
		if m.toast == "" {
			m.toast = msg.Notification.Content
		}
		return m, tea.Tick(5*time.Second, func(time.Time) tea.Msg { return toastExpiredMsg{} })

	case toastExpiredMsg:
		m.toast = ""
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 36; w > 20 {
			m.input.SetWidth(w)
		}
		return m, nil
	}

	if m.composing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ChatsModel) View() string {
	var sidebar strings.Builder
	sidebar.WriteString(styles.TitleStyle.Render("Conversations") + "\n\n")

	chats := m.ctx.Chats.Chats()
	selected := m.ctx.Chats.Selected()
	for i, chat := range chats {
		line := chat.Patient.Name
		if chat.LastMessage != nil {
			preview := chat.LastMessage.Content
			if len(preview) > 18 {
				preview = preview[:18] + "…"
			}
			line += styles.SubtitleStyle.Render(" · " + preview)
		}
		if i == m.selectedIdx {
			sidebar.WriteString(styles.SelectedItemStyle.Render(line) + "\n")
		} else {
			sidebar.WriteString("  " + line + "\n")
		}
	}
	if len(chats) == 0 {
		sidebar.WriteString(styles.SubtitleStyle.Render("No conversations yet") + "\n")
	}

	var thread strings.Builder
	if selected == nil {
		thread.WriteString(styles.SubtitleStyle.Render("Select a conversation"))
	} else {
		thread.WriteString(styles.TitleStyle.Render(selected.Patient.Name) + "\n\n")
		msgs := m.ctx.Chats.Messages()
		start := m.scrollIndex
		if start > len(msgs) {
			start = len(msgs)
		}
		end := start + maxVisibleMessages
		if end > len(msgs) {
			end = len(msgs)
		}
		for _, message := range msgs[start:end] {
			sender := "You"
			if message.Sender != m.ctx.User.ID {
				sender = selected.Patient.Name
			}
			content := message.Content
			if message.Type == appmodels.MessageImage {
				content = "[image] " + content
			}
			thread.WriteString(styles.SenderStyle.Render(sender) + " " + content + " " +
				styles.TimestampStyle.Render(message.Timestamp.Format("15:04")) + "\n")
		}
		thread.WriteString("\n" + m.input.View())
	}

	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.SidebarStyle.Render(sidebar.String()),
		styles.ThreadStyle.Render(thread.String()),
	)

	footer := ""
	if m.toast != "" {
		footer += styles.ToastStyle.Render(m.toast+"  [n] view") + "\n"
	}
	if m.status != "" {
		footer += m.statusStyle.Render(m.status) + "\n"
	}
	if unread := m.ctx.Notifications.UnreadCount(); unread > 0 {
		footer += styles.UnreadStyle.Render(fmt.Sprintf("%d unread notifications", unread)) + "\n"
	}
	help := "[Enter] Open | [Tab] Compose | [Ctrl+S] Send | [n] Notifications | [r] Refresh | [q] Quit"
	footer += styles.HelpStyle.Render(help)

	return styles.ContainerStyle.Render(columns + "\n" + footer)
}
