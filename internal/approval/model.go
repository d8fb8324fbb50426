// Package approval is the interactive review screen for risky operations.
package approval

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/extraction-plan/internal/models"
	"github.com/pders01/extraction-plan/internal/plan"
)

const previewLines = 6

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)

	approvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	rejectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))

	detailStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model lists the risky operations of a plan with a decision for each
type Model struct {
	ops       []models.Operation
	initial   []models.ApprovalStatus
	decisions []models.ApprovalStatus
	cursor    int
	width     int

	saved bool
}

// New starts a review of ops. Each decision starts at the status written
// in the plan; missing or unknown statuses start as PENDING.
func New(ops []models.Operation) Model {
	m := Model{ops: ops, decisions: make([]models.ApprovalStatus, len(ops))}
	for i, op := range ops {
		switch status := op.Approval(); status {
		case models.StatusApproved, models.StatusRejected:
			m.decisions[i] = status
		default:
			m.decisions[i] = models.StatusPending
		}
	}
	m.initial = append([]models.ApprovalStatus(nil), m.decisions...)
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "enter", "s":
			m.saved = true
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.ops)-1 {
				m.cursor++
			}
		case "a":
			m.set(models.StatusApproved)
		case "r":
			m.set(models.StatusRejected)
		case "p":
			m.set(models.StatusPending)
		case "A":
			decisions := make([]models.ApprovalStatus, len(m.decisions))
			for i := range decisions {
				decisions[i] = models.StatusApproved
			}
			m.decisions = decisions
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
	}

	return m, nil
}

func (m *Model) set(status models.ApprovalStatus) {
	if len(m.decisions) == 0 {
		return
	}
	// Copy so earlier Model values keep their decisions
	decisions := append([]models.ApprovalStatus(nil), m.decisions...)
	decisions[m.cursor] = status
	m.decisions = decisions
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(" Risky operations awaiting approval "))
	b.WriteString("\n\n")

	if len(m.ops) == 0 {
		b.WriteString("  No risky operations in this plan.\n\n")
		b.WriteString(helpStyle.Render("q: quit"))
		return b.String()
	}

	for i, op := range m.ops {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		fmt.Fprintf(&b, "%s%-9s %d. %-12s %s\n", cursor, statusLabel(m.decisions[i]), op.Number, op.Kind, op.TargetPath())
	}

	b.WriteString("\n")
	b.WriteString(m.detail(m.ops[m.cursor]))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("j/k: move | a: approve | r: reject | p: pending | A: approve all | enter: save | q: quit"))
	return b.String()
}

func (m Model) detail(op models.Operation) string {
	var lines []string
	add := func(label string, value *string) {
		if value == nil {
			return
		}
		lines = append(lines, labelStyle.Render(label+":")+" "+preview(*value))
	}

	add(plan.LabelRationale, op.Rationale)
	if op.Risky != nil {
		add(plan.LabelRiskAssessment, op.Risky.RiskAssessment)
		add(plan.LabelCurrentContent, op.Risky.CurrentContent)
		add(plan.LabelProposedContent, op.Risky.ProposedContent)
	}
	if len(lines) == 0 {
		lines = append(lines, "(no details)")
	}

	style := detailStyle
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func preview(s string) string {
	lines := strings.Split(s, "\n")
	if len(lines) > previewLines {
		lines = append(lines[:previewLines], fmt.Sprintf("... (%d more lines)", len(lines)-previewLines))
	}
	if len(lines) > 1 {
		return "\n" + strings.Join(lines, "\n")
	}
	return s
}

func statusLabel(s models.ApprovalStatus) string {
	label := fmt.Sprintf("[%s]", s)
	switch s {
	case models.StatusApproved:
		return approvedStyle.Render(label)
	case models.StatusRejected:
		return rejectedStyle.Render(label)
	default:
		return pendingStyle.Render(label)
	}
}

// Saved reports whether the review ended with a save
func (m Model) Saved() bool {
	return m.saved
}

// Changes returns the decisions changed during the review, by operation
// number
func (m Model) Changes() map[int]models.ApprovalStatus {
	changes := map[int]models.ApprovalStatus{}
	for i, op := range m.ops {
		if m.initial[i] != m.decisions[i] {
			changes[op.Number] = m.decisions[i]
		}
	}
	return changes
}

// Apply writes the changed decisions into the plan text
func (m Model) Apply(text string) (string, error) {
	var err error
	for number, status := range m.Changes() {
		text, err = plan.SetApproval(text, number, status)
		if err != nil {
			return "", err
		}
	}
	return text, nil
}

// Run shows the review screen and returns the final model
func Run(ops []models.Operation) (Model, error) {
	final, err := tea.NewProgram(New(ops)).Run()
	if err != nil {
		return Model{}, fmt.Errorf("approval screen: %w", err)
	}
	return final.(Model), nil
}
