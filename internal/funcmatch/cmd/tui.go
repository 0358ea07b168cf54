package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"funcmatch/internal/funcmatch/styles"
	"funcmatch/internal/matcher"
	"funcmatch/internal/report"
)

type viewMode int

const (
	viewListing viewMode = iota
	viewSymbols
	viewSummary
)

type outcomesMsg struct {
	outcomes []matcher.Outcome
	err      error
}

type outcomeItem struct {
	index   int
	outcome matcher.Outcome
}

func (i outcomeItem) FilterValue() string {
	return i.outcome.Symbol.Name + " " + i.outcome.Symbol.Demangled()
}

type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(outcomeItem)
	if !ok {
		return
	}

	indicator := " "
	name := i.outcome.Symbol.Demangled()
	if index == m.Index() {
		indicator = ">"
		name = styles.Selected.Render(name)
	}

	verdict := styles.Pass.Render("✓")
	if !i.outcome.Matches() {
		verdict = styles.Fail.Render("✗")
	}

	fmt.Fprintf(w, " %s %s  %s  %s",
		indicator,
		verdict,
		styles.Dim.Render(fmt.Sprintf("%08x", i.outcome.Symbol.Start)),
		name)
}

type model struct {
	ctx      context.Context
	session  *matcher.Session
	symbol   string
	reporter *report.Reporter

	viewport     viewport.Model
	summaryView  viewport.Model
	outcomesList list.Model
	spinner      spinner.Model

	mode    viewMode
	loading bool
	// all keeps every outcome for the summary; outcomes drops symbols
	// the object does not define.
	all      []matcher.Outcome
	outcomes []matcher.Outcome
	err      error
	width    int
	height   int
}

// newModel runs symbol, or the whole table when symbol is empty, and
// lets the user browse the outcomes.
func newModel(ctx context.Context, session *matcher.Session, symbol string) model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(22)

	svp := viewport.New()
	svp.SetWidth(80)
	svp.SetHeight(22)

	outcomesList := list.New([]list.Item{}, itemDelegate{}, 80, 22)
	outcomesList.SetShowStatusBar(false)
	outcomesList.SetFilteringEnabled(true)
	outcomesList.Title = "Symbols"
	outcomesList.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("99")).
		MarginLeft(2)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))

	return model{
		ctx:          ctx,
		session:      session,
		symbol:       symbol,
		reporter:     report.New(session, report.Options{Format: report.FormatText, Listing: true}),
		viewport:     vp,
		summaryView:  svp,
		outcomesList: outcomesList,
		spinner:      s,
		mode:         viewListing,
		loading:      true,
		width:        80,
		height:       24,
	}
}

func compareCmd(ctx context.Context, session *matcher.Session, symbol string) tea.Cmd {
	return func() tea.Msg {
		if symbol == "" {
			outcomes, err := session.CompareAll(ctx)
			return outcomesMsg{outcomes: outcomes, err: err}
		}
		o, err := session.Compare(ctx, symbol)
		if err != nil {
			return outcomesMsg{err: err}
		}
		return outcomesMsg{outcomes: []matcher.Outcome{o}}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		compareCmd(m.ctx, m.session, m.symbol),
		m.spinner.Tick,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case outcomesMsg:
		m.loading = false
		m.err = msg.err
		m.all = msg.outcomes
		m.outcomes = matcher.Compared(msg.outcomes)
		items := make([]list.Item, 0, len(m.outcomes))
		for i, o := range m.outcomes {
			items = append(items, outcomeItem{index: i, outcome: o})
		}
		cmd = m.outcomesList.SetItems(items)
		m.showOutcome(m.firstFailure())
		m.updateSummary()
		return m, cmd

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			m.viewport.SetWidth(msg.Width)
			m.viewport.SetHeight(msg.Height - 2)
			m.summaryView.SetWidth(msg.Width)
			m.summaryView.SetHeight(msg.Height - 2)
			m.outcomesList.SetWidth(msg.Width)
			m.outcomesList.SetHeight(msg.Height - 2)
			m.updateSummary()
		}

	case tea.KeyMsg:
		key := msg.String()
		if key == "q" || key == "ctrl+c" {
			return m, tea.Quit
		}
		// The list owns the keyboard while its filter is open.
		if m.mode == viewSymbols && m.outcomesList.FilterState() == list.Filtering {
			break
		}
		switch key {
		case "l":
			m.mode = viewListing
			return m, nil
		case "s":
			if len(m.outcomes) > 1 {
				m.mode = viewSymbols
			}
			return m, nil
		case "m":
			m.mode = viewSummary
			return m, nil
		case "tab":
			m.cycle()
			return m, nil
		case "enter":
			if item, ok := m.outcomesList.SelectedItem().(outcomeItem); ok && m.mode == viewSymbols {
				m.showOutcome(item.index)
				m.mode = viewListing
			}
			return m, nil
		}
	}

	switch m.mode {
	case viewSymbols:
		m.outcomesList, cmd = m.outcomesList.Update(msg)
	case viewSummary:
		m.summaryView, cmd = m.summaryView.Update(msg)
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// cycle moves to the next view, skipping the symbol list for a single
// outcome.
func (m *model) cycle() {
	switch m.mode {
	case viewListing:
		if len(m.outcomes) > 1 {
			m.mode = viewSymbols
		} else {
			m.mode = viewSummary
		}
	case viewSymbols:
		m.mode = viewSummary
	default:
		m.mode = viewListing
	}
}

func (m *model) firstFailure() int {
	for i, o := range m.outcomes {
		if !o.Matches() {
			return i
		}
	}
	return 0
}

func (m *model) showOutcome(i int) {
	if m.err != nil {
		m.viewport.SetContent(styles.Fail.Render("Error: ") + m.err.Error())
		return
	}
	if i < 0 || i >= len(m.outcomes) {
		m.viewport.SetContent(styles.Dim.Render("No symbols compared."))
		return
	}
	o := m.outcomes[i]

	var b strings.Builder
	b.WriteString(styles.Title.Render(o.Symbol.Demangled()))
	b.WriteString("\n")
	b.WriteString(styles.Dim.Render(o.Symbol.String()))
	b.WriteString("\n\n")
	if err := m.reporter.Outcome(&b, o); err != nil {
		b.WriteString(err.Error())
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
}

func (m *model) updateSummary() {
	if m.loading {
		return
	}
	md := m.reporter.AllMarkdown(m.all)
	if m.err != nil {
		md = "# funcmatch\n\n> " + m.err.Error() + "\n"
	}
	out, err := styles.RenderMarkdown(md, m.width)
	if err != nil {
		out = md
	}
	m.summaryView.SetContent(out)
}

func (m model) View() string {
	if m.loading {
		target := m.symbol
		if target == "" {
			target = "all symbols"
		}
		return fmt.Sprintf("\n %s Comparing %s...\n", m.spinner.View(), target)
	}

	var content string
	switch m.mode {
	case viewSymbols:
		content = m.outcomesList.View()
	case viewSummary:
		content = m.summaryView.View()
	default:
		content = m.viewport.View()
	}

	var menu string
	switch m.mode {
	case viewSymbols:
		menu = " Enter: view listing • L: listing • M: summary • Tab: cycle • Q: quit "
	case viewSummary:
		menu = " L: listing • Tab: cycle • Q: quit "
	default:
		if len(m.outcomes) > 1 {
			menu = " S: symbols • M: summary • Tab: cycle • Q: quit "
		} else {
			menu = " M: summary • Tab: cycle • Q: quit "
		}
	}

	return content + "\n" + styles.MenuBar.Width(m.width).Render(menu)
}
