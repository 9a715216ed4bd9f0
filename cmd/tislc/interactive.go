package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/tisl"
	"github.com/wippyai/tisl/abi"
	"github.com/wippyai/tisl/ast"
	"github.com/wippyai/tisl/errors"
	"github.com/wippyai/tisl/host"
	"github.com/wippyai/tisl/target"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func setLoggers(l *zap.Logger) {
	ast.SetLogger(l)
	target.SetLogger(l)
	host.SetLogger(l)
}

type entryKind int

const (
	entryFunction entryKind = iota
	entryRecord
	entryEnum
)

func (k entryKind) String() string {
	switch k {
	case entryFunction:
		return "fn"
	case entryRecord:
		return "record"
	default:
		return "enum"
	}
}

// entry is one browsable declaration.
type entry struct {
	kind   entryKind
	module string
	name   string
	detail string
}

func (e entry) title() string {
	return e.module + "." + e.name
}

// browseEntries lists every function, record and enum of prog with the
// details the browser shows for it.
func browseEntries(prog *ast.Program, cfg abi.Config) ([]entry, error) {
	layout := abi.NewLayout(cfg)
	var entries []entry
	var visit func(mod *ast.Module) error
	visit = func(mod *ast.Module) error {
		qn := mod.QualifiedName()
		for _, fn := range mod.FunctionList() {
			detail, err := functionDetail(mod, fn, cfg)
			if err != nil {
				return err
			}
			entries = append(entries, entry{entryFunction, qn, fn.Name, detail})
		}
		for _, rec := range mod.RecordList() {
			detail, err := recordDetail(rec, layout)
			if err != nil {
				return err
			}
			entries = append(entries, entry{entryRecord, qn, rec.Name, detail})
		}
		for _, e := range mod.EnumList() {
			entries = append(entries, entry{entryEnum, qn, e.Name, enumDetail(e)})
		}
		for _, sub := range mod.Submodules() {
			if err := visit(sub); err != nil {
				return err
			}
		}
		return nil
	}
	for _, mod := range prog.Roots() {
		if err := visit(mod); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func functionDetail(mod *ast.Module, fn *ast.Function, cfg abi.Config) (string, error) {
	sig, err := abi.FunctionSignature(fn, cfg)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if fn.Doc != "" {
		b.WriteString(fn.Doc + "\n\n")
	}
	for _, arg := range fn.Arguments {
		fmt.Fprintf(&b, "in  %s: %s\n", arg.Name, arg.TypeName())
	}
	for _, ret := range fn.ReturnValues {
		fmt.Fprintf(&b, "out %s: %s\n", ret.Name, ret.TypeName())
	}
	fmt.Fprintf(&b, "\nimport %q %q\n", abi.ImportModule(mod), abi.ExportName(fn))
	fmt.Fprintf(&b, "%s %s\n", strings.Join(sig.ParamNames, ", "), sig.String())
	return b.String(), nil
}

func recordDetail(rec *ast.Record, layout *abi.Layout) (string, error) {
	size, err := layout.RecordSize(rec)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if rec.Doc != "" {
		b.WriteString(rec.Doc + "\n\n")
	}
	fmt.Fprintf(&b, "size %d bytes\n\n", size)
	for _, f := range rec.Fields {
		off, err := layout.FieldOffset(rec, f.Name)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%4d  %s: %s\n", off, f.Name, f.TypeName())
	}
	return b.String(), nil
}

func enumDetail(e *ast.Enum) string {
	var b strings.Builder
	if e.Doc != "" {
		b.WriteString(e.Doc + "\n\n")
	}
	for i, v := range e.Variants {
		fmt.Fprintf(&b, "%3d  %s\n", i, v)
	}
	return b.String()
}

type browseState int

const (
	stateList browseState = iota
	stateFilter
	stateDetail
)

type browseModel struct {
	err      error
	prog     *ast.Program
	target   target.Target
	opts     target.Options
	filename string
	entries  []entry
	visible  []int
	filter   textinput.Model
	detail   viewport.Model
	heading  string
	selected int
	state    browseState
	ready    bool
}

func newBrowseModel(filename string, prog *ast.Program, entries []entry, t target.Target, opts target.Options) *browseModel {
	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/ "
	ti.Width = 40
	m := &browseModel{
		prog:     prog,
		target:   t,
		opts:     opts,
		filename: filename,
		entries:  entries,
		filter:   ti,
		detail:   viewport.New(80, 20),
	}
	m.applyFilter()
	return m
}

func (m *browseModel) Init() tea.Cmd {
	return nil
}

// applyFilter keeps the entries whose qualified name contains the filter.
func (m *browseModel) applyFilter() {
	q := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, e := range m.entries {
		if q == "" || strings.Contains(strings.ToLower(e.title()), q) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *browseModel) current() (entry, bool) {
	if len(m.visible) == 0 {
		return entry{}, false
	}
	return m.entries[m.visible[m.selected]], true
}

func (m *browseModel) showDetail(heading, body string) {
	m.heading = heading
	m.detail.SetContent(body)
	m.detail.GotoTop()
	m.state = stateDetail
}

func (m *browseModel) generated() string {
	var b strings.Builder
	for frag, err := range tisl.Generate(m.prog, m.target, m.opts) {
		if err != nil {
			return errorStyle.Render(render(err))
		}
		b.WriteString(frag)
	}
	return b.String()
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.detail.Width = msg.Width
		m.detail.Height = max(msg.Height-4, 1)
		m.ready = true

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.state {
		case stateFilter:
			switch msg.String() {
			case "enter", "esc":
				m.filter.Blur()
				m.state = stateList
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.applyFilter()
			return m, cmd

		case stateDetail:
			switch msg.String() {
			case "q", "esc", "enter":
				m.state = stateList
				return m, nil
			}
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd

		case stateList:
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "up", "k":
				if m.selected > 0 {
					m.selected--
				}
			case "down", "j":
				if m.selected < len(m.visible)-1 {
					m.selected++
				}
			case "/":
				m.state = stateFilter
				return m, m.filter.Focus()
			case "enter":
				if e, ok := m.current(); ok {
					m.showDetail(e.kind.String()+" "+e.title(), e.detail)
				}
			case "g":
				m.showDetail(m.target.Name()+" output", m.generated())
			}
		}
	}
	return m, nil
}

func (m *browseModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("TISL"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	if m.state == stateDetail {
		b.WriteString(funcStyle.Render(m.heading))
		b.WriteString("\n")
		b.WriteString(m.detail.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • ctrl+c quit"))
		return b.String()
	}

	b.WriteString(m.filter.View())
	b.WriteString("\n\n")
	for i, idx := range m.visible {
		e := m.entries[idx]
		line := fmt.Sprintf("%-6s %s", e.kind, e.title())
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + typeStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if len(m.visible) == 0 {
		b.WriteString(helpStyle.Render("  no matches"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • enter details • / filter • g generate • q quit"))
	return b.String()
}

func (d *driver) interactive() error {
	if d.input == "" {
		return errors.InvalidInput(errors.PhaseConfig, "-i needs an input file, stdin is used by the terminal")
	}
	t, opts, err := d.prepare()
	if err != nil {
		return err
	}
	cfg, err := d.abiConfig()
	if err != nil {
		return err
	}
	prog, err := d.parse()
	if err != nil {
		return err
	}
	entries, err := browseEntries(prog, cfg)
	if err != nil {
		return err
	}
	p := tea.NewProgram(newBrowseModel(d.fileName(), prog, entries, t, opts), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
