package models

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gofrs/uuid/v5"

	appmodels "github.com/mohamedMoujib/E-Health-sub000/internal/models"
	"github.com/mohamedMoujib/E-Health-sub000/internal/store"
	"github.com/mohamedMoujib/E-Health-sub000/internal/tui/styles"
)

type notificationsLoadedMsg struct{ err error }

type NotificationsModel struct {
	ctx         *Ctx
	selectedIdx int
	loading     bool
	status      string
	statusStyle lipgloss.Style
	toast       string
}

func NewNotificationsModel(ctx *Ctx) NotificationsModel {
	return NotificationsModel{
		ctx:         ctx,
		loading:     true,
		status:      "Loading notifications...",
		statusStyle: styles.StatusInfoStyle,
	}
}

func (m NotificationsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m NotificationsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return notificationsLoadedMsg{err: m.ctx.Notifications.FetchAll()}
	}
}

// visibleItems returns the notifications in the order the panel renders
// them, so the highlight and the key actions target the same row.
func (m NotificationsModel) visibleItems() []appmodels.Notification {
	return store.GroupByDay(m.ctx.Notifications.Items(), time.Now()).Flatten()
}

func (m NotificationsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		items := m.visibleItems()
		switch msg.String() {
		case "up", "k":
			if m.selectedIdx > 0 {
				m.selectedIdx--
			}
		case "down", "j":
			if m.selectedIdx < len(items)-1 {
				m.selectedIdx++
			}
		case "m":
			if m.selectedIdx < len(items) {
				m.ctx.Notifications.MarkRead(items[m.selectedIdx].ID)
			}
		case "a":
			m.ctx.Notifications.MarkAllRead()
		case "d":
			if m.selectedIdx < len(items) {
				m.ctx.Notifications.DeleteOne(items[m.selectedIdx].ID)
				if m.selectedIdx > 0 {
					m.selectedIdx--
				}
			}
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			m.status = "Refreshing..."
			m.statusStyle = styles.StatusInfoStyle
			return m, m.loadCmd()
		case "esc", "q":
			next := NewChatsModel(m.ctx)
			return next, next.Init()
		case "ctrl+c":
			return m, tea.Quit
		}

	case notificationsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			// Inline error with a retry affordance; the collection on
			// screen is whatever was loaded before.
			m.status = msg.err.Error() + "  [r] retry"
			m.statusStyle = styles.StatusErrorStyle
			return m, nil
		}
		count := len(m.ctx.Notifications.Items())
		m.status = fmt.Sprintf("%d notifications", count)
		if count == 0 {
			m.status = "You're all caught up."
		}
		m.statusStyle = styles.StatusInfoStyle
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

	case IncomingMessageMsg:
		return m, nil
	}

	return m, nil
}

func (m NotificationsModel) View() string {
	var sb strings.Builder
	sb.WriteString(styles.TitleStyle.Render("Notifications") + "\n")
	sb.WriteString(styles.SubtitleStyle.Render("Messages, appointments and medical alerts") + "\n")

	items := m.ctx.Notifications.Items()
	groups := store.GroupByDay(items, time.Now())

	idx := 0
	renderGroup := func(title string, bucket []appmodels.Notification) {
		if len(bucket) == 0 {
			return
		}
		sb.WriteString(styles.GroupHeaderStyle.Render(title) + "\n")
		for _, n := range bucket {
			line := n.Title
			if line == "" {
				line = n.Content
			}
			line += " " + styles.TimestampStyle.Render(n.CreatedAt.Format("Jan 2 15:04"))
			if !n.IsRead {
				line = styles.UnreadStyle.Render("● ") + line
			} else {
				line = "  " + line
			}
			if idx == m.selectedIdx {
				sb.WriteString(styles.SelectedItemStyle.Render(line) + "\n")
			} else {
				sb.WriteString(line + "\n")
			}
			idx++
		}
	}
	renderGroup("Today", groups.Today)
	renderGroup("Yesterday", groups.Yesterday)
	renderGroup("Earlier", groups.Earlier)

	if len(items) == 0 {
		sb.WriteString("\n" + styles.SubtitleStyle.Render("Nothing here yet") + "\n")
	}

	sb.WriteString("\n")
	if m.toast != "" {
		sb.WriteString(styles.ToastStyle.Render(m.toast) + "\n")
	}
	if m.status != "" {
		sb.WriteString(m.statusStyle.Render(m.status) + "\n")
	}
	sb.WriteString(styles.UnreadStyle.Render(fmt.Sprintf("%d unread", m.ctx.Notifications.UnreadCount())) + "\n")
	sb.WriteString(styles.HelpStyle.Render("[m] Mark read | [a] Mark all | [d] Delete | [r] Refresh | [Esc] Back"))

	return styles.ContainerStyle.Render(sb.String())
}

// NormalizeIncoming fills in a generated id when the server pushed a
// notification without one, so the store's identity invariants hold.
func NormalizeIncoming(n appmodels.Notification) appmodels.Notification {
	if n.ID == "" {
		if id, err := uuid.NewV4(); err == nil {
			n.ID = id.String()
		} else {
			n.ID = fmt.Sprintf("local-%d", time.Now().UnixNano())
		}
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return n
}
