package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sweeney/devpanel/internal/logic"
)

var (
	panelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f5c2e7"))
	fieldBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#585b70")).Padding(0, 1).Width(24)
	fieldNameStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8"))
	slideStyle      = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#89b4fa")).Padding(1, 4)
	footerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type textMsg struct {
	field Field
	text  string
}

type imageMsg string

type scrollableMsg bool

type slideMsg int

type scrollMsg struct {
	dx      int
	animate bool
}

type panelModel struct {
	texts      map[Field]string
	image      string
	slide      int
	scrollable bool
	offset     int
	onGesture  func(logic.Gesture)
}

func (m panelModel) Init() tea.Cmd { return nil }

func (m panelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case textMsg:
		m.texts[msg.field] = msg.text
	case imageMsg:
		m.image = string(msg)
	case scrollableMsg:
		m.scrollable = bool(msg)
	case slideMsg:
		m.slide = int(msg)
	case scrollMsg:
		m.offset += msg.dx
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			m.gesture(logic.GestureSingleClick)
		case "d":
			m.gesture(logic.GestureDoubleClick)
		case "l":
			m.gesture(logic.GestureLongPress)
		}
	}
	return m, nil
}

func (m panelModel) gesture(g logic.Gesture) {
	if m.onGesture != nil {
		m.onGesture(g)
	}
}

func (m panelModel) View() string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("devpanel"))
	b.WriteString("\n")

	// Until the carousel has scrolled away the start-up slides cover the panel.
	if m.offset == 0 && m.slide > 0 {
		b.WriteString(slideStyle.Render(fmt.Sprintf("slide %d", m.slide)))
		b.WriteString("\n")
	} else {
		var boxes []string
		for _, f := range Fields {
			body := fieldNameStyle.Render(string(f)) + "\n" + m.texts[f]
			boxes = append(boxes, fieldBoxStyle.Render(body))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes[:3]...))
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes[3:]...))
		b.WriteString("\n")
	}
	if m.image != "" {
		b.WriteString(fieldNameStyle.Render("image: ") + m.image + "\n")
	}
	b.WriteString(footerStyle.Render("s: single click  d: double click  l: long press  q: quit"))
	return b.String()
}

// Panel renders the display in a terminal and turns key presses into
// gestures. It implements Backend.
type Panel struct {
	prog *tea.Program
}

// NewPanel creates a terminal panel. onGesture is called from the terminal
// event loop for each simulated button gesture.
func NewPanel(onGesture func(logic.Gesture), opts ...tea.ProgramOption) *Panel {
	m := panelModel{
		texts:      make(map[Field]string),
		scrollable: true,
		onGesture:  onGesture,
	}
	return &Panel{prog: tea.NewProgram(m, opts...)}
}

// Run runs the terminal event loop until the user quits or Quit is called.
func (p *Panel) Run() error {
	_, err := p.prog.Run()
	return err
}

// Quit stops the event loop.
func (p *Panel) Quit() {
	p.prog.Quit()
}

func (p *Panel) SetText(f Field, text string)  { p.prog.Send(textMsg{field: f, text: text}) }
func (p *Panel) ShowImage(path string)         { p.prog.Send(imageMsg(path)) }
func (p *Panel) SetScrollable(on bool)         { p.prog.Send(scrollableMsg(on)) }
func (p *Panel) ShowSlide(n int)               { p.prog.Send(slideMsg(n)) }
func (p *Panel) ScrollBy(dx int, animate bool) { p.prog.Send(scrollMsg{dx: dx, animate: animate}) }
