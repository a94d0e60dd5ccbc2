package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-markov/config"
	"go-markov/debug"
	"go-markov/markov"
	"go-markov/midi"
	"go-markov/midifile"
	"go-markov/music"
	"go-markov/player"
	"go-markov/store"
	"go-markov/theme"
	"go-markov/widgets"
)

// Sender is an open MIDI output
type Sender interface {
	Send(msg gomidi.Message) error
	Close() error
}

// Dialer opens the output port matching name
type Dialer func(ctx context.Context, port string) (Sender, error)

// DialMIDI opens a system MIDI output
func DialMIDI(ctx context.Context, port string) (Sender, error) {
	out, err := midi.OpenOutput(ctx, port)
	if err != nil {
		return nil, err
	}
	return out, nil
}

const tempoStep = 5

var keyNames = [12]string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}

type Model struct {
	Config  *config.Config
	Store   *store.Store
	Theme   *theme.Theme
	Watcher *midi.Watcher // may be nil
	Project string

	dial Dialer
	wait func(ctx context.Context, d time.Duration) error

	piece    *music.Piece
	seed     uint64
	status   string
	failed   bool
	playing  bool
	playID   int
	stop     context.CancelFunc
	progress <-chan float64
	playhead float64
	ports    []string
	width    int
	quitting bool
}

// PlaybackDoneMsg is sent when a performance ends or fails
type PlaybackDoneMsg struct {
	ID  int
	Err error
}

// PlayheadMsg carries the current playback beat
type PlayheadMsg struct {
	ID   int
	Beat float64
}

type PortEventMsg midi.PortEvent

// generatedMsg replaces the piece
type generatedMsg struct {
	piece *music.Piece
	seed  uint64
	err   error
}

func NewModel(cfg *config.Config, st *store.Store, th *theme.Theme, watcher *midi.Watcher, dial Dialer) Model {
	return Model{
		Config:   cfg,
		Store:    st,
		Theme:    th,
		Watcher:  watcher,
		Project:  "tui",
		dial:     dial,
		playhead: -1,
		width:    80,
	}
}

// Generate composes a piece from the config. Seed 0 picks a fresh one.
// The plan is taken from cfg before returning, so later edits to cfg do not
// reach a composition that is already running.
func Generate(cfg *config.Config, seed uint64) tea.Cmd {
	plan := cfg.Plan()
	return func() tea.Msg {
		src := markov.NewRandSource(seed)
		p, err := markov.Compose(plan, src)
		return generatedMsg{piece: p, seed: src.Seed(), err: err}
	}
}

func ListenForPorts(w *midi.Watcher) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-w.Events()
		if !ok {
			return nil
		}
		return PortEventMsg(event)
	}
}

func listenForPlayhead(id int, progress <-chan float64) tea.Cmd {
	return func() tea.Msg {
		beat, ok := <-progress
		if !ok {
			return nil
		}
		return PlayheadMsg{ID: id, Beat: beat}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{Generate(m.Config, m.Config.Seed)}
	if m.Watcher != nil {
		cmds = append(cmds, ListenForPorts(m.Watcher))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case generatedMsg:
		if msg.err != nil {
			m.setError("generate: %v", msg.err)
			return m, nil
		}
		m.piece = msg.piece
		m.seed = msg.seed
		m.setStatus("composed %d notes in %d voices, %.1fs", len(m.piece.Notes), m.piece.NumSequences(), m.piece.Duration())

	case PlayheadMsg:
		if !m.playing || msg.ID != m.playID {
			return m, nil
		}
		m.playhead = msg.Beat
		return m, listenForPlayhead(m.playID, m.progress)

	case PlaybackDoneMsg:
		if msg.ID != m.playID {
			// a stopped performance finishing late
			return m, nil
		}
		m.playing = false
		m.stop = nil
		m.playhead = -1
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.setError("play: %v", msg.Err)
		}

	case PortEventMsg:
		event := midi.PortEvent(msg)
		if event.Type == midi.PortConnected {
			m.setStatus("port connected: %s", event.Name)
		} else {
			m.setStatus("port disconnected: %s", event.Name)
		}
		m.ports = m.Watcher.Ports()
		return m, ListenForPorts(m.Watcher)
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.stopPlayback()
		return m, tea.Quit

	case "r":
		m.stopPlayback()
		return m, Generate(m.Config, 0)

	case "R":
		m.stopPlayback()
		return m, Generate(m.Config, m.seed)

	case "]", "[":
		step := 1
		if key == "[" {
			step = 11
		}
		m.Config.Key = (m.Config.Key + step) % 12
		m.stopPlayback()
		return m, Generate(m.Config, m.seed)

	case "+", "=":
		m.setTempo(m.Config.Tempo + tempoStep)

	case "-", "_":
		m.setTempo(m.Config.Tempo - tempoStep)

	case "w":
		if m.piece == nil {
			return m, nil
		}
		if err := midifile.WriteFile(m.Config.Output, m.piece); err != nil {
			m.setError("write: %v", err)
		} else {
			m.setStatus("wrote %s", m.Config.Output)
		}

	case "s":
		if m.piece == nil || m.Store == nil {
			return m, nil
		}
		info, err := m.Store.Save(m.Project, "", m.piece, m.seed)
		if err != nil {
			m.setError("save: %v", err)
		} else {
			m.setStatus("saved %s/%s", m.Project, info.Filename)
		}

	case "p", " ":
		if m.playing {
			m.stopPlayback()
			return m, nil
		}
		if m.piece == nil || m.dial == nil {
			return m, nil
		}
		return m, m.startPlayback()
	}
	return m, nil
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.failed = false
}

func (m *Model) setError(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.failed = true
	debug.Log("tui", "%s", m.status)
}

func (m *Model) setTempo(bpm float64) {
	if bpm < tempoStep {
		return
	}
	m.Config.Tempo = bpm
	if m.piece != nil && !m.playing {
		m.piece.Tempo = bpm
	}
}

func (m *Model) stopPlayback() {
	if m.stop != nil {
		m.stop()
	}
	m.stop = nil
	m.playing = false
	m.playhead = -1
}

func (m *Model) startPlayback() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.stop = cancel
	m.playing = true
	m.playID++
	id := m.playID
	m.playhead = 0

	progress := make(chan float64, 64)
	m.progress = progress
	piece := m.piece.Clone()
	dial, wait := m.dial, m.wait
	port, velocity := m.Config.Player.Port, m.Config.Player.Velocity

	play := func() tea.Msg {
		defer close(progress)
		out, err := dial(ctx, port)
		if err != nil {
			return PlaybackDoneMsg{ID: id, Err: err}
		}
		defer out.Close()

		pl := player.New(out.Send)
		pl.Velocity = velocity
		if wait != nil {
			pl.Wait = wait
		}
		pl.OnBeat = func(beat float64) {
			select {
			case progress <- beat:
			default:
			}
		}
		return PlaybackDoneMsg{ID: id, Err: pl.Play(ctx, piece)}
	}
	return tea.Batch(play, listenForPlayhead(id, progress))
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())
	if m.failed {
		statusStyle = statusStyle.Foreground(m.Theme.Warning())
	}

	playState := "STOP"
	if m.playing {
		playState = "PLAY"
	}
	port := m.Config.Player.Port
	if port == "" {
		port = "first port"
	}
	header := headerStyle.Render(fmt.Sprintf("go-markov  %s  %3.0fbpm  key:%s  seed:%d  out:%s",
		playState, m.Config.Tempo, keyNames[m.Config.Key], m.seed, port))

	var body string
	if m.piece == nil {
		body = dimStyle.Render("composing...")
	} else {
		body = widgets.RenderRoll(m.piece, m.Theme, widgets.RollOptions{
			Resolution: max(m.Config.Subdivisions/2, 1),
			MaxColumns: max(m.width-6, 8),
			Playhead:   m.playhead,
		}) + "\n\n" + widgets.RenderLegend(m.piece, m.Theme)
	}

	help := dimStyle.Render(widgets.RenderKeyLine([]widgets.KeyBinding{
		{Key: "r", Desc: "new"},
		{Key: "R", Desc: "redo seed"},
		{Key: "[ ]", Desc: "key"},
		{Key: "+/-", Desc: "tempo"},
		{Key: "p", Desc: "play"},
		{Key: "w", Desc: "write midi"},
		{Key: "s", Desc: "save"},
		{Key: "q", Desc: "quit"},
	}, "  "))

	// Build output
	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(body)
	out.WriteString("\n\n")
	if m.status != "" {
		out.WriteString(statusStyle.Render(m.status))
		out.WriteString("\n")
	}
	if len(m.ports) > 0 {
		out.WriteString(dimStyle.Render("ports: " + strings.Join(m.ports, ", ")))
		out.WriteString("\n")
	}
	out.WriteString(help)

	return out.String()
}
