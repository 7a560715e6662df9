package tui

import (
	"fmt"
	"sort"
	"strings"

	"busmanager/internal/client"
	"busmanager/internal/panel"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type rowItem struct {
	panel.Item
}

func (i rowItem) Title() string       { return i.Label }
func (i rowItem) Description() string { return i.ID }
func (i rowItem) FilterValue() string { return i.Label }

// tab is one entity screen: a list on the left, the form on the right.
type tab struct {
	panel  *panel.Panel
	entity client.Entity
	list   list.Model
	inputs []textinput.Model
	// focus 0 is the list, i>0 is inputs[i-1]
	focus int
	// links is the rendered association summary of the selected route.
	links string
}

func newTab(p *panel.Panel, entity client.Entity, st Styles) *tab {
	s := p.Schema()

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, st.ListWidth, 16)
	l.Title = s.Title
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	inputs := make([]textinput.Model, len(s.Fields))
	for i, f := range s.Fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Width = st.InputWidth
		ti.CharLimit = 128
		ti.Cursor.SetMode(cursor.CursorStatic)
		if f.Kind == panel.Date {
			ti.Placeholder = "ДД.ММ.ГГГГ"
			ti.CharLimit = 10
		}
		inputs[i] = ti
	}
	return &tab{panel: p, entity: entity, list: l, inputs: inputs}
}

func (t *tab) setFocus(i int) {
	n := len(t.inputs) + 1
	t.focus = ((i % n) + n) % n
	for j := range t.inputs {
		if j == t.focus-1 {
			t.inputs[j].Focus()
		} else {
			t.inputs[j].Blur()
		}
	}
}

// syncItems copies the panel list into the list widget, keeping the cursor
// on the selected record when it is still present.
func (t *tab) syncItems(snap panel.Snapshot) {
	items := make([]list.Item, len(snap.Items))
	cursorAt := t.list.Index()
	for i, it := range snap.Items {
		items[i] = rowItem{it}
		if it.ID == snap.SelectedID && snap.SelectedID != "" {
			cursorAt = i
		}
	}
	t.list.SetItems(items)
	if cursorAt >= len(items) {
		cursorAt = len(items) - 1
	}
	if cursorAt >= 0 {
		t.list.Select(cursorAt)
	}
}

// syncForm overwrites the inputs with the edit buffer.
func (t *tab) syncForm(snap panel.Snapshot) {
	for i, f := range snap.Schema.Fields {
		t.inputs[i].SetValue(snap.Record[f.Key])
		t.inputs[i].CursorEnd()
	}
	if snap.Record == nil {
		t.links = ""
	}
}

func (t *tab) selected() (panel.Item, bool) {
	it, ok := t.list.SelectedItem().(rowItem)
	return it.Item, ok
}

// updateInput feeds a key to the focused input and mirrors the value into
// the panel, starting a blank record when there is none.
func (t *tab) updateInput(msg tea.Msg) tea.Cmd {
	idx := t.focus - 1
	before := t.inputs[idx].Value()
	var cmd tea.Cmd
	t.inputs[idx], cmd = t.inputs[idx].Update(msg)
	after := t.inputs[idx].Value()
	if after == before {
		return cmd
	}

	key := t.panel.Schema().Fields[idx].Key
	if !t.panel.EditField(key, after) {
		t.panel.New()
		snap := t.panel.Snapshot()
		for i, f := range snap.Schema.Fields {
			if i != idx {
				t.panel.EditField(f.Key, t.inputs[i].Value())
			}
		}
		t.panel.EditField(key, after)
	}
	return cmd
}

func (t *tab) view(st Styles, snap panel.Snapshot, height int) string {
	listPane := st.Pane
	if t.focus == 0 {
		listPane = st.FocusPane
	}
	left := listPane.Width(st.ListWidth).Height(height).Render(t.list.View())

	var b strings.Builder
	for i, f := range snap.Schema.Fields {
		label := f.Label
		if f.Required {
			label += " *"
		}
		ls := st.Label
		if t.focus == i+1 {
			ls = st.FocusLabel
		}
		b.WriteString(ls.Render(label))
		b.WriteString("\n")
		b.WriteString(t.inputs[i].View())
		b.WriteString("\n\n")
	}

	if len(snap.Info) > 0 {
		keys := make([]string, 0, len(snap.Info))
		for k := range snap.Info {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(st.Muted.Render(fmt.Sprintf("%s: %s", k, snap.Info[k])))
			b.WriteString("\n")
		}
	}
	if t.links != "" {
		b.WriteString(st.Muted.Render(t.links))
		b.WriteString("\n")
	}

	status := "новая запись"
	switch {
	case snap.State == panel.Submitting:
		status = "отправка..."
	case snap.SelectedID != "":
		status = "ID " + snap.SelectedID
	case snap.Record == nil:
		status = "нет выбора"
	}
	b.WriteString(st.Muted.Render(status))

	formPane := st.Pane
	if t.focus > 0 {
		formPane = st.FocusPane
	}
	right := formPane.Width(st.InputWidth + 4).Height(height).Render(b.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}
