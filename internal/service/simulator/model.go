package simulator

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/oshokin/findme/internal/board/virtual"
	"github.com/oshokin/findme/internal/config"
	"github.com/oshokin/findme/internal/domain/alert"
	"github.com/oshokin/findme/internal/logger"
	"github.com/oshokin/findme/internal/radio"
	"github.com/oshokin/findme/internal/radio/air"
	"github.com/oshokin/findme/internal/service/device"
	"github.com/oshokin/findme/internal/tick"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	litStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	darkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

// tickMsg asks the model to run one device pass.
type tickMsg struct{}

// model is the simulator state shared with bubbletea.
type model struct {
	// ctx carries the simulator logger.
	ctx context.Context
	// device is the tag under simulation.
	device *device.Device
	// board is the virtual hardware of the tag.
	board *virtual.Board
	// air is the in-memory radio shared with the simulated peers.
	air *air.Air
	// interval is the delay between device passes.
	interval time.Duration
	// status is the state published by the last pass.
	status device.Status
	// central reports whether a simulated central holds a connection.
	central bool
}

// newModel wires a tag to the given number of simulated remote tags, named
// after the peer pattern and numbered from 1.
func newModel(ctx context.Context, settings *config.Config, clock tick.Clock, peers int) (model, error) {
	if peers > MaxPeers {
		return model{}, fmt.Errorf("simulate %d peers, at most %d: %w", peers, MaxPeers, errTooManyPeers)
	}

	peerList := make([]*air.Peer, 0, peers)
	for i := range peers {
		addr := radio.Address{0xF1, 0xD0, 0x00, 0x00, 0x00, byte(i + 1)} //nolint:gosec // Bounded by MaxPeers.
		peerList = append(peerList, air.NewPeer(addr, fmt.Sprintf("%s %d", settings.PeerPattern, i+1)))
	}

	b := virtual.NewBoard()
	a := air.New(air.WithPeers(peerList...))

	dev, err := device.New(ctx, device.Params{
		Board:    &b.Board,
		Radio:    a,
		Clock:    clock,
		Settings: settings,
	})
	if err != nil {
		return model{}, fmt.Errorf("create device: %w", err)
	}

	return model{
		ctx:      ctx,
		device:   dev,
		board:    b,
		air:      a,
		interval: settings.LoopInterval,
		status:   dev.Status(),
	}, nil
}

// Init schedules the first pass.
func (m model) Init() tea.Cmd {
	return m.next()
}

// Update runs device passes and handles keys.
//
//nolint:ireturn // bubbletea requires tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.device.Tick(m.ctx)
		m.status = m.device.Status()

		return m, m.next()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey applies one key press.
func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "h":
		m.board.TapHigh()
	case "m":
		m.board.TapMild()
	case "0":
		m.writeAlert(alert.None)
	case "1":
		m.writeAlert(alert.Mild)
	case "2":
		m.writeAlert(alert.High)
	case "c":
		m.central = !m.central
		m.air.SetCentral(m.central)
		logger.InfoKV(m.ctx, "Central toggled", "connected", m.central)
	case "r":
		for _, p := range m.air.Peers() {
			p.SetReachable(!p.Reachable())
		}

		logger.Info(m.ctx, "Peer reachability toggled")
	}

	return m, nil
}

// writeAlert writes the local alert level as a remote locator would.
func (m model) writeAlert(level alert.Severity) {
	m.air.WriteLocalAlert(level)
	logger.InfoKV(m.ctx, "Alert written", "level", level.String())
}

// next schedules the following pass.
func (m model) next() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// View renders the tag and the simulated peers.
func (m model) View() string {
	var sb strings.Builder

	st := m.status

	sb.WriteString(titleStyle.Render("findme simulator") + "\n\n")
	fmt.Fprintf(&sb, "%s %s %-22s %s %s %s\n",
		labelStyle.Render("LED A"), led(st.LitA), st.UI.LedA,
		labelStyle.Render("LED B"), led(st.LitB), st.UI.LedB)
	fmt.Fprintf(&sb, "%s %s   %s %s   %s %s\n",
		labelStyle.Render("role"), st.State.Role,
		labelStyle.Render("severity"), st.State.Severity,
		labelStyle.Render("local alert"), st.LocalAlert)
	fmt.Fprintf(&sb, "%s %s   %s %s   %s %d Hz\n",
		labelStyle.Render("tone"), st.UI.Tone,
		labelStyle.Render("playing"), orDash(st.Playing),
		labelStyle.Render("piezo"), m.board.Speaker.Frequency())
	fmt.Fprintf(&sb, "%s %t   %s %t   %s %d   %s %d\n\n",
		labelStyle.Render("connected"), st.Connected,
		labelStyle.Render("advertising"), st.Advertising,
		labelStyle.Render("ledger"), st.Peers,
		labelStyle.Render("cancel passes"), st.CancelPassesLeft)

	sb.WriteString(titleStyle.Render("peers") + "\n")

	for _, p := range m.air.Peers() {
		reach := "reachable"
		if !p.Reachable() {
			reach = "out of range"
		}

		fmt.Fprintf(&sb, "  %-12s %s  level %-5s writes %-3d %s\n",
			p.Name(), p.Address(), p.Level(), len(p.Writes()), reach)
	}

	sb.WriteString("\n" + helpStyle.Render("h high · m mild · 0/1/2 alert none/mild/high · c central · r range · q quit"))

	return sb.String()
}

// led draws an LED level.
func led(on bool) string {
	if on {
		return litStyle.Render("●")
	}

	return darkStyle.Render("○")
}

// orDash returns s or "-" when s is empty.
func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
