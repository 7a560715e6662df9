// Package tui is the terminal front end: one tab per entity, each backed by
// a panel.Panel.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"busmanager/internal/client"
	"busmanager/internal/config"
	"busmanager/internal/domain"
	"busmanager/internal/domain/models"
	"busmanager/internal/panel"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const helpLine = "tab: поле • enter: выбрать • ctrl+s: сохранить • ctrl+n: создать • ctrl+d: удалить • ctrl+e: очистить • ctrl+r: обновить • esc: закрыть • ctrl+←/→: вкладка • ctrl+c: выход"

type (
	loadedMsg struct {
		tab int
		err error
	}
	selectedMsg struct {
		tab int
		id  string
		err error
	}
	submittedMsg struct {
		tab    int
		action string
		err    error
	}
	linksMsg struct {
		tab  int
		id   string
		text string
	}
)

// App is the root bubbletea model.
type App struct {
	ctx    context.Context
	styles Styles
	tabs   []*tab
	active int
	width  int
	height int
}

// New builds one tab per schema over transport.
func New(ctx context.Context, theme config.Theme, transport client.Transport) *App {
	st := NewStyles(theme)
	a := &App{ctx: ctx, styles: st, height: 20}
	for _, s := range panel.Schemas {
		entity := client.For(transport, s.Entity)
		a.tabs = append(a.tabs, newTab(panel.New(s, entity), entity, st))
	}
	return a
}

func (a *App) Init() tea.Cmd {
	cmds := make([]tea.Cmd, len(a.tabs))
	for i := range a.tabs {
		cmds[i] = a.load(i)
	}
	return tea.Batch(cmds...)
}

func (a *App) load(i int) tea.Cmd {
	p := a.tabs[i].panel
	return func() tea.Msg {
		return loadedMsg{tab: i, err: p.LoadAll(a.ctx)}
	}
}

func (a *App) selectRow(i int, id string) tea.Cmd {
	p := a.tabs[i].panel
	return func() tea.Msg {
		return selectedMsg{tab: i, id: id, err: p.Select(a.ctx, id)}
	}
}

func (a *App) submit(i int, action string) tea.Cmd {
	p := a.tabs[i].panel
	var op func(context.Context) error
	switch action {
	case "create":
		op = p.Create
	case "save":
		op = p.Save
	default:
		op = p.Delete
	}
	return func() tea.Msg {
		return submittedMsg{tab: i, action: action, err: op(a.ctx)}
	}
}

// routeLinks fetches the route's drivers, stops and buses for display.
func (a *App) routeLinks(i int, id string) tea.Cmd {
	entity := a.tabs[i].entity
	return func() tea.Msg {
		raw, err := entity.Call(a.ctx, "GetDetailsById", id)
		if err != nil {
			return linksMsg{tab: i, id: id, text: panel.ServerMessage(err)}
		}
		var d models.RouteDetails
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return linksMsg{tab: i, id: id}
		}
		return linksMsg{tab: i, id: id, text: formatLinks(d)}
	}
}

func formatLinks(d models.RouteDetails) string {
	var drivers, stops, buses []string
	for _, dr := range d.Drivers {
		drivers = append(drivers, dr.FullName())
	}
	for _, s := range d.Stops {
		stops = append(stops, s.Name)
	}
	for _, b := range d.Buses {
		buses = append(buses, b.RegisterNumber)
	}
	orDash := func(xs []string) string {
		if len(xs) == 0 {
			return "-"
		}
		return strings.Join(xs, ", ")
	}
	return "Водители: " + orDash(drivers) + "\nОстановки: " + orDash(stops) + "\nАвтобусы: " + orDash(buses)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height-8
		if a.height < 8 {
			a.height = 8
		}
		for _, t := range a.tabs {
			t.list.SetSize(a.styles.ListWidth, a.height)
		}
		return a, nil

	case loadedMsg:
		t := a.tabs[msg.tab]
		t.syncItems(t.panel.Snapshot())
		return a, nil

	case selectedMsg:
		if errors.Is(msg.err, panel.ErrStale) {
			return a, nil
		}
		t := a.tabs[msg.tab]
		snap := t.panel.Snapshot()
		t.syncForm(snap)
		if msg.err == nil && snap.Schema.Entity == domain.EntityRoute {
			t.links = ""
			return a, a.routeLinks(msg.tab, msg.id)
		}
		return a, nil

	case submittedMsg:
		t := a.tabs[msg.tab]
		snap := t.panel.Snapshot()
		t.syncItems(snap)
		if msg.err == nil {
			t.syncForm(snap)
			t.setFocus(0)
		}
		return a, nil

	case linksMsg:
		t := a.tabs[msg.tab]
		if t.panel.Snapshot().SelectedID == msg.id {
			t.links = msg.text
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := a.tabs[a.active]
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "ctrl+right":
		a.active = (a.active + 1) % len(a.tabs)
		return a, nil
	case "ctrl+left":
		a.active = (a.active + len(a.tabs) - 1) % len(a.tabs)
		return a, nil
	case "tab":
		t.setFocus(t.focus + 1)
		return a, nil
	case "shift+tab":
		t.setFocus(t.focus - 1)
		return a, nil
	case "esc":
		t.panel.DismissAlert()
		return a, nil
	case "ctrl+r":
		return a, a.load(a.active)
	case "ctrl+e":
		t.panel.New()
		t.syncForm(t.panel.Snapshot())
		t.links = ""
		t.setFocus(1)
		return a, nil
	case "ctrl+s":
		return a, a.submit(a.active, "save")
	case "ctrl+n":
		return a, a.submit(a.active, "create")
	case "ctrl+d":
		return a, a.submit(a.active, "delete")
	case "enter":
		if t.focus == 0 {
			if it, ok := t.selected(); ok {
				return a, a.selectRow(a.active, it.ID)
			}
			return a, nil
		}
		t.setFocus(t.focus + 1)
		return a, nil
	}

	if t.focus == 0 {
		var cmd tea.Cmd
		t.list, cmd = t.list.Update(msg)
		return a, cmd
	}
	return a, t.updateInput(msg)
}

func (a *App) View() string {
	st := a.styles
	var tabs []string
	for i, t := range a.tabs {
		style := st.Tab
		if i == a.active {
			style = st.ActiveTab
		}
		tabs = append(tabs, style.Render(t.panel.Schema().Title))
	}

	t := a.tabs[a.active]
	snap := t.panel.Snapshot()

	parts := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, tabs...),
		t.view(st, snap, a.height),
	}
	if snap.Alert != "" {
		parts = append(parts, st.Alert.Render(snap.Alert+"\n\n[esc] OK"))
	}
	parts = append(parts, st.Help.Render(helpLine))
	return st.App.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// Run starts the program on the alternate screen and blocks until exit.
func Run(ctx context.Context, theme config.Theme, transport client.Transport) error {
	_, err := tea.NewProgram(New(ctx, theme, transport), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
