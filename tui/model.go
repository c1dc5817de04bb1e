package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"eucalypso/engine"
)

var (
	// Orca-inspired minimal palette
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#555"))
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#fff"))
	cursorStyle   = lipgloss.NewStyle().Background(lipgloss.Color("#444"))
	playheadStyle = lipgloss.NewStyle().Reverse(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d787ff"))
)

// Host is the serialized gateway to the engine. The audio and MIDI
// goroutines own the engine; every method here must be safe to call from
// the TUI goroutine.
type Host interface {
	Snapshot() engine.Status
	SetParam(key, val string)
	GetParam(key string) (string, bool)
	TogglePlay()
	Updates() <-chan struct{}
}

type Model struct {
	host     Host
	cursor   int // selected lane
	quitting bool
}

type UpdateMsg struct{}

func NewModel(host Host) Model {
	return Model{host: host}
}

func ListenForUpdates(host Host) tea.Cmd {
	return func() tea.Msg {
		<-host.Updates()
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.host)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "p", " ":
			m.host.TogglePlay()

		case "+", "=":
			m.adjustInt("bpm", 5)

		case "-", "_":
			m.adjustInt("bpm", -5)

		case "h", "left":
			if m.cursor > 0 {
				m.cursor--
			}

		case "l", "right":
			if m.cursor < engine.MaxLanes-1 {
				m.cursor++
			}

		case "k", "up":
			m.adjustInt(m.laneKey("pulses"), 1)

		case "j", "down":
			m.adjustInt(m.laneKey("pulses"), -1)

		case "K":
			m.adjustInt(m.laneKey("steps"), 1)

		case "J":
			m.adjustInt(m.laneKey("steps"), -1)

		case "]":
			m.adjustInt(m.laneKey("rotation"), 1)

		case "[":
			m.adjustInt(m.laneKey("rotation"), -1)

		case "1", "2", "3", "4":
			idx := int(msg.String()[0] - '1')
			key := fmt.Sprintf("lane%d_enabled", idx+1)
			if val, _ := m.host.GetParam(key); val == "on" {
				m.host.SetParam(key, "off")
			} else {
				m.host.SetParam(key, "on")
			}
			m.cursor = idx

		case "m":
			m.toggleEnum("play_mode", "hold", "latch")

		case "r":
			m.toggleEnum("retrigger_mode", "restart", "cont")

		case "s":
			m.toggleEnum("sync", "internal", "clock")

		case "g":
			m.toggleEnum("register_mode", "held", "scale")
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.host)
	}

	return m, nil
}

func (m Model) laneKey(suffix string) string {
	return fmt.Sprintf("lane%d_%s", m.cursor+1, suffix)
}

func (m Model) adjustInt(key string, delta int) {
	val, ok := m.host.GetParam(key)
	if !ok {
		return
	}
	n := 0
	fmt.Sscanf(val, "%d", &n)
	m.host.SetParam(key, fmt.Sprintf("%d", n+delta))
}

func (m Model) toggleEnum(key, a, b string) {
	if val, _ := m.host.GetParam(key); val == a {
		m.host.SetParam(key, b)
	} else {
		m.host.SetParam(key, a)
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.host.Snapshot()

	playState := "stop"
	if st.Running {
		playState = "play"
	}
	header := headerStyle.Render(fmt.Sprintf("eucalypso  %s  %3dbpm  %-5s %s  step:%02d",
		playState, st.BPM, st.Rate, st.Sync, st.PhraseStep%64))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")

	for i := range st.Lanes {
		out.WriteString(m.laneRow(i, &st.Lanes[i], st))
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(statusStyle.Render(fmt.Sprintf("%-5s %-4s  held:%s  voices:%d/%d",
		st.PlayMode, st.Retrigger, noteList(st.ActiveNotes), len(st.VoiceNotes), st.MaxVoices)))
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render("h/l:lane  j/k:pulses  J/K:steps  [/]:rotate  1-4:toggle  m:mode  r:retrig  s:sync  g:register  p:play  +/-:tempo  q:quit"))
	out.WriteString("\n")

	return out.String()
}

// laneRow renders one lane as its Euclidean pattern with the playhead
// highlighted
func (m Model) laneRow(idx int, lane *engine.Lane, st engine.Status) string {
	marker := " "
	if idx == m.cursor {
		marker = ">"
	}

	playhead := -1
	if st.Running && lane.Steps > 0 {
		playhead = int(st.PhraseStep % uint64(lane.Steps))
	}

	var cells []string
	for s := 0; s < lane.Steps && s < 32; s++ {
		char := "·"
		style := dimStyle
		if engine.EuclidHit(uint64(s), lane.Steps, lane.Pulses, lane.Rotation) {
			char = "●"
			style = activeStyle
		}
		if !lane.Enabled {
			style = dimStyle
		}
		if s == playhead && lane.Enabled {
			style = playheadStyle
		}
		cells = append(cells, style.Render(char))
	}

	state := "  "
	if !lane.Enabled {
		state = "off"
	}
	label := fmt.Sprintf("%s L%d %2d/%-2d ", marker, idx+1, lane.Pulses, lane.Steps)
	row := label + strings.Join(cells, "") + " " + dimStyle.Render(state)
	if idx == m.cursor {
		return cursorStyle.Render(label) + strings.Join(cells, "") + " " + dimStyle.Render(state)
	}
	return row
}

// noteList renders active note numbers as readable names
func noteList(notes []uint8) string {
	if len(notes) == 0 {
		return "-"
	}
	names := make([]string, len(notes))
	for i, n := range notes {
		names[i] = noteToName(n)
	}
	return strings.Join(names, " ")
}

// noteToName converts MIDI note to readable name (e.g., "C4", "F#3")
func noteToName(note uint8) string {
	names := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	octave := int(note)/12 - 1
	return fmt.Sprintf("%s%d", names[note%12], octave)
}
