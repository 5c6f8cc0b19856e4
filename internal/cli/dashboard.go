package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Dashboard panel indices.
const (
	panelWorkflows = iota
	panelCache
	panelAlerts
	panelCount
)

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	workflowData *workflowSnapshot
	cacheData    *cacheSnapshot
	alerts       []alertSnapshot

	// State.
	loading bool
	err     error
}

type workflowSnapshot struct {
	plansGenerated    int
	workflowsFailed   int
	degradedPlans     int
	averageQuality    float64
	averageDurationMS float64
	eventCount        int
	failuresByStage   map[string]int
}

type cacheSnapshot struct {
	size      int
	capacity  int
	hits      int
	misses    int
	evictions int
}

type alertSnapshot struct {
	severity string
	message  string
	time     string
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	workflows *workflowSnapshot
	cache     *cacheSnapshot
	alerts    []alertSnapshot
	err       error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	qualityGood = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	qualityPoor = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel() dashboardModel {
	return dashboardModel{
		activePanel: panelWorkflows,
		loading:     true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadData
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.workflowData = msg.workflows
		m.cacheData = msg.cache
		m.alerts = msg.alerts
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Pedagogue Dashboard ")
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	workflowPanel := m.renderWorkflowPanel()
	cachePanel := m.renderCachePanel()
	alertsPanel := m.renderAlertsPanel()

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		// Horizontal layout: three columns.
		colWidth := availableWidth / 3
		workflowPanel = m.applyPanelStyle(panelWorkflows, workflowPanel, colWidth-4)
		cachePanel = m.applyPanelStyle(panelCache, cachePanel, colWidth-4)
		alertsPanel = m.applyPanelStyle(panelAlerts, alertsPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, workflowPanel, cachePanel, alertsPanel)
	} else {
		// Vertical layout: stacked.
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		workflowPanel = m.applyPanelStyle(panelWorkflows, workflowPanel, panelWidth)
		cachePanel = m.applyPanelStyle(panelCache, cachePanel, panelWidth)
		alertsPanel = m.applyPanelStyle(panelAlerts, alertsPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, workflowPanel, cachePanel, alertsPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderWorkflowPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Workflows (7d)"))
	b.WriteString("\n")

	if m.workflowData == nil {
		b.WriteString("  No metrics available.")
		return b.String()
	}

	wd := m.workflowData
	b.WriteString(fmt.Sprintf("  %-14s %d\n", "Events", wd.eventCount))
	b.WriteString(fmt.Sprintf("  %-14s %d\n", "Plans", wd.plansGenerated))
	b.WriteString(fmt.Sprintf("  %-14s %d\n", "Failed", wd.workflowsFailed))
	b.WriteString(fmt.Sprintf("  %-14s %d\n", "Degraded", wd.degradedPlans))

	if wd.plansGenerated > 0 {
		quality := fmt.Sprintf("  %-14s %.1f/10", "Quality", wd.averageQuality)
		style := qualityGood
		if wd.averageQuality < 6.0 {
			style = qualityPoor
		}
		b.WriteString(style.Render(quality))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  %-14s %.0f ms\n", "Duration", wd.averageDurationMS))
	}

	if len(wd.failuresByStage) > 0 {
		b.WriteString("\n  Failures by stage:\n")
		for _, stage := range sortedKeys(wd.failuresByStage) {
			b.WriteString(fmt.Sprintf("    %-12s %d\n", stage, wd.failuresByStage[stage]))
		}
	}

	return b.String()
}

func (m dashboardModel) renderCachePanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Lookup cache"))
	b.WriteString("\n")

	if m.cacheData == nil {
		b.WriteString("  No cache available.")
		return b.String()
	}

	cd := m.cacheData
	b.WriteString(fmt.Sprintf("  %-14s %d / %d\n", "Entries", cd.size, cd.capacity))
	b.WriteString(fmt.Sprintf("  %-14s %d\n", "Hits", cd.hits))
	b.WriteString(fmt.Sprintf("  %-14s %d\n", "Misses", cd.misses))
	b.WriteString(fmt.Sprintf("  %-14s %d\n", "Evictions", cd.evictions))

	if total := cd.hits + cd.misses; total > 0 {
		b.WriteString(fmt.Sprintf("\n  Hit rate: %d%%", cd.hits*100/total))
	}

	return b.String()
}

func (m dashboardModel) renderAlertsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Alerts"))
	b.WriteString("\n")

	if len(m.alerts) == 0 {
		b.WriteString("  No active alerts.")
		return b.String()
	}

	for _, a := range m.alerts {
		sev := styleForSeverity(a.severity).Render(fmt.Sprintf("[%s]", strings.ToUpper(a.severity)))
		b.WriteString(fmt.Sprintf("  %s %s\n", sev, a.message))
	}

	b.WriteString(fmt.Sprintf("\n  Total: %d alert(s)", len(m.alerts)))

	return b.String()
}

func styleForSeverity(severity string) lipgloss.Style {
	switch strings.ToLower(severity) {
	case "high":
		return severityHigh
	case "medium":
		return severityMedium
	case "low":
		return severityLow
	default:
		return lipgloss.NewStyle()
	}
}

func loadData() tea.Msg {
	var result dataLoadedMsg

	// Load metrics from MetricsCalc.
	if MetricsCalc != nil {
		since := time.Now().UTC().AddDate(0, 0, -7)
		metrics, err := MetricsCalc.Calculate(since)
		if err != nil {
			result.err = fmt.Errorf("loading metrics: %w", err)
			return result
		}
		result.workflows = &workflowSnapshot{
			plansGenerated:    metrics.PlansGenerated,
			workflowsFailed:   metrics.WorkflowsFailed,
			degradedPlans:     metrics.DegradedPlans,
			averageQuality:    metrics.AverageQuality,
			averageDurationMS: metrics.AverageDurationMS,
			eventCount:        metrics.EventCount,
			failuresByStage:   metrics.FailuresByStage,
		}
	}

	// Load cache counters.
	if Lookups != nil {
		stats := Lookups.Stats()
		result.cache = &cacheSnapshot{
			size:      stats.Size,
			capacity:  stats.Capacity,
			hits:      stats.Hits,
			misses:    stats.Misses,
			evictions: stats.Evictions,
		}
	}

	// Load alerts from AlertEngine.
	if AlertEngine != nil {
		alerts, err := AlertEngine.Evaluate()
		if err != nil {
			result.err = fmt.Errorf("loading alerts: %w", err)
			return result
		}
		result.alerts = make([]alertSnapshot, 0, len(alerts))

		// Sort alerts by severity: high first, then medium, then low.
		sort.Slice(alerts, func(i, j int) bool {
			return severityRank(string(alerts[i].Severity)) < severityRank(string(alerts[j].Severity))
		})

		for _, a := range alerts {
			result.alerts = append(result.alerts, alertSnapshot{
				severity: string(a.Severity),
				message:  a.Message,
				time:     a.TriggeredAt.Format("2006-01-02 15:04 UTC"),
			})
		}
	}

	return result
}

func severityRank(s string) int {
	switch s {
	case "high":
		return 0
	case "medium":
		return 1
	case "low":
		return 2
	default:
		return 3
	}
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard for workflow metrics and alerts",
	Long: `Launch an interactive terminal dashboard showing workflow throughput,
lookup cache health, and alerts in a live-updating view.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (observability may be disabled)")
		}
		p := tea.NewProgram(newDashboardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
