package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/muesli/termenv"

	"github.com/feltkit/holdemd/internal/events"
)

var cli struct {
	Table   string `arg:"" help:"Table id to watch"`
	Server  string `short:"s" default:"http://localhost:8080" help:"holdemd base URL"`
	Player  string `short:"p" help:"Watch as this player to see their hole cards"`
	LogFile string `long:"log-file" help:"Write debug logs to this file"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("holdem-watch"),
		kong.Description("Attach to a holdemd table and render its events live"),
		kong.UsageOnError(),
	)

	logger := log.New(io.Discard)
	if cli.LogFile != "" {
		f, err := os.OpenFile(cli.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			ctx.Exit(1)
		}
		defer func() { _ = f.Close() }()
		logger = log.New(f)
		logger.SetLevel(log.DebugLevel)
	}

	endpoint, err := wsEndpoint(cli.Server, cli.Table, cli.Player)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid server URL: %v\n", err)
		ctx.Exit(1)
	}

	conn, resp, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to %s: %v\n", endpoint, err)
		ctx.Exit(1)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer func() { _ = conn.Close() }()
	logger.Info("Connected", "endpoint", endpoint, "player", cli.Player)

	eventCh := make(chan wireEvent, 64)
	errCh := make(chan error, 1)
	go readEvents(conn, eventCh, errCh)

	m := newModel(cli.Table, cli.Player, eventCh, errCh, logger)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		ctx.Exit(1)
	}
}

// wsEndpoint turns the HTTP base URL into the table's stream address.
func wsEndpoint(server, tableID, player string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	q := url.Values{}
	q.Set("table", tableID)
	if player != "" {
		q.Set("player", player)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// wireEvent mirrors the server's event envelope with the payload kept raw so
// each kind decodes its own shape.
type wireEvent struct {
	Kind       events.Kind     `json:"kind"`
	TableID    string          `json:"tableId"`
	HandNumber int64           `json:"handNumber,omitempty"`
	Version    int64           `json:"version,omitempty"`
	At         int64           `json:"at"`
	To         string          `json:"to,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// readEvents pumps decoded events into ch until the connection fails, then
// parks the reason in errs and closes the stream.
func readEvents(conn *websocket.Conn, ch chan<- wireEvent, errs chan<- error) {
	defer close(ch)
	for {
		var ev wireEvent
		if err := conn.ReadJSON(&ev); err != nil {
			errs <- err
			return
		}
		ch <- ev
	}
}

type eventMsg wireEvent

type streamClosedMsg struct {
	err error
}

// palette holds the render styles, picked for the terminal's background.
type palette struct {
	title  lipgloss.Style
	street lipgloss.Style
	action lipgloss.Style
	win    lipgloss.Style
	card   lipgloss.Style
	chat   lipgloss.Style
	alert  lipgloss.Style
	dim    lipgloss.Style
}

func newPalette(dark bool) palette {
	pick := func(light, darkC string) lipgloss.Style {
		c := light
		if dark {
			c = darkC
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	return palette{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		street: pick("4", "12").Bold(true),
		action: pick("6", "14"),
		win:    pick("2", "10").Bold(true),
		card:   pick("5", "13").Bold(true),
		chat:   pick("3", "11"),
		alert:  pick("1", "9"),
		dim:    pick("8", "245"),
	}
}

// model renders the table's event stream into a scrollable log.
type model struct {
	tableID string
	player  string
	logger  *log.Logger

	events <-chan wireEvent
	errs   <-chan error

	viewport viewport.Model
	spinner  spinner.Model
	pal      palette

	lines    []string
	live     bool
	closeErr error
	count    int
	ready    bool
	width    int
	height   int
}

func newModel(tableID, player string, eventCh <-chan wireEvent, errCh <-chan error, logger *log.Logger) *model {
	pal := newPalette(termenv.HasDarkBackground())
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = pal.dim
	return &model{
		tableID:  tableID,
		player:   player,
		logger:   logger.WithPrefix("watch"),
		events:   eventCh,
		errs:     errCh,
		viewport: viewport.New(80, 24),
		spinner:  sp,
		pal:      pal,
		live:     true,
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.nextEvent())
}

// nextEvent blocks on the stream and hands the result to Update. A closed
// channel means the reader exited; its parked error says why.
func (m *model) nextEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return streamClosedMsg{err: <-m.errs}
		}
		return eventMsg(ev)
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - 3 // header, blank line, footer
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.refresh()

	case eventMsg:
		ev := wireEvent(msg)
		m.count++
		m.logger.Debug("Event", "kind", ev.Kind, "hand", ev.HandNumber, "version", ev.Version)
		m.lines = append(m.lines, m.renderEvent(ev)...)
		m.refresh()
		return m, m.nextEvent()

	case streamClosedMsg:
		m.live = false
		m.closeErr = msg.err
		m.lines = append(m.lines, m.pal.alert.Render(fmt.Sprintf("stream closed: %v", msg.err)))
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if !m.live {
			return m, nil
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m *model) View() string {
	if !m.ready {
		return "connecting..."
	}
	status := m.spinner.View() + " live"
	if !m.live {
		status = m.pal.alert.Render("disconnected")
	}
	who := ""
	if m.player != "" {
		who = m.pal.dim.Render("  as " + m.player)
	}
	header := fmt.Sprintf("%s  %s%s  %s",
		m.pal.title.Render("holdem-watch"),
		m.pal.dim.Render("table "+m.tableID),
		who, status)
	footer := m.pal.dim.Render(fmt.Sprintf("%d events   q quit   ↑/↓ scroll", m.count))
	return header + "\n" + m.viewport.View() + "\n" + footer
}

// renderEvent formats one event into log lines. Unknown or undecodable
// payloads fall back to the bare kind so the stream never stalls on a
// newer server.
func (m *model) renderEvent(ev wireEvent) []string {
	ts := m.pal.dim.Render(time.UnixMilli(ev.At).Format("15:04:05"))

	switch ev.Kind {
	case events.KindHandStarted:
		var p events.HandStarted
		if err := json.Unmarshal(ev.Payload, &p); err == nil {
			lines := []string{fmt.Sprintf("%s %s  blinds %d/%d  pot %d", ts,
				m.pal.title.Render(fmt.Sprintf("hand #%d", p.HandNumber)),
				p.SmallBlind, p.BigBlind, p.Pot)}
			for _, seat := range p.Players {
				tag := ""
				switch seat.Seat {
				case p.DealerSeat:
					tag = " (D)"
				case p.SBSeat:
					tag = " (SB)"
				case p.BBSeat:
					tag = " (BB)"
				}
				if p.DealerSeat == p.SBSeat && seat.Seat == p.DealerSeat {
					tag = " (D/SB)"
				}
				lines = append(lines, fmt.Sprintf("%s   seat %d  %s%s  %d",
					ts, seat.Seat, seat.PlayerID, tag, seat.Stack))
			}
			return lines
		}

	case events.KindCardsDealt:
		var p events.CardsDealt
		if err := json.Unmarshal(ev.Payload, &p); err == nil {
			return []string{fmt.Sprintf("%s dealt to %s: %s", ts, p.PlayerID,
				m.pal.card.Render(strings.Join(p.Cards, " ")))}
		}

	case events.KindPlayerAction:
		var p events.PlayerAction
		if err := json.Unmarshal(ev.Payload, &p); err == nil {
			if p.IsTimeout {
				// The playerTimeout event right behind this one carries
				// the applied action; one line is enough.
				return nil
			}
			return []string{fmt.Sprintf("%s %s %s  %s", ts,
				p.PlayerID,
				m.pal.action.Render(verbPhrase(p.Action, p.Amount)),
				m.pal.dim.Render(fmt.Sprintf("pot %d", p.Pot)))}
		}

	case events.KindPhaseChanged:
		var p events.PhaseChanged
		if err := json.Unmarshal(ev.Payload, &p); err == nil {
			return []string{fmt.Sprintf("%s %s  %s  %s", ts,
				m.pal.street.Render(p.Phase),
				m.pal.card.Render(strings.Join(p.Community, " ")),
				m.pal.dim.Render(fmt.Sprintf("pot %d", p.Pot)))}
		}

	case events.KindPlayerTimeout:
		var p events.PlayerTimeout
		if err := json.Unmarshal(ev.Payload, &p); err == nil {
			return []string{fmt.Sprintf("%s %s", ts,
				m.pal.alert.Render(fmt.Sprintf("%s timed out, %s applied", p.PlayerID, p.Applied)))}
		}

	case events.KindHandComplete:
		var p events.HandComplete
		if err := json.Unmarshal(ev.Payload, &p); err == nil {
			var lines []string
			if len(p.Board) > 0 {
				lines = append(lines, fmt.Sprintf("%s board  %s", ts,
					m.pal.card.Render(strings.Join(p.Board, " "))))
			}
			for _, r := range p.Showdown {
				lines = append(lines, fmt.Sprintf("%s %s shows %s  %s", ts, r.PlayerID,
					m.pal.card.Render(strings.Join(r.Cards, " ")),
					m.pal.dim.Render(r.Hand)))
			}
			for _, pay := range p.Payouts {
				detail := "uncontested"
				if pay.Hand != "" {
					detail = "with " + pay.Hand
				}
				lines = append(lines, fmt.Sprintf("%s %s", ts,
					m.pal.win.Render(fmt.Sprintf("%s wins %d %s", pay.PlayerID, pay.Amount, detail))))
			}
			return lines
		}

	case events.KindPlayerJoined:
		var p events.PlayerJoined
		if err := json.Unmarshal(ev.Payload, &p); err == nil {
			return []string{fmt.Sprintf("%s %s sat down at seat %d with %d", ts,
				p.PlayerID, p.Seat, p.Stack)}
		}

	case events.KindPlayerLeft:
		var p events.PlayerLeft
		if err := json.Unmarshal(ev.Payload, &p); err == nil {
			return []string{fmt.Sprintf("%s %s left seat %d", ts, p.PlayerID, p.Seat)}
		}

	case events.KindTableReset:
		var p events.TableReset
		if err := json.Unmarshal(ev.Payload, &p); err == nil {
			reason := p.Reason
			if reason == "" {
				reason = "no reason given"
			}
			return []string{fmt.Sprintf("%s %s", ts,
				m.pal.alert.Render("table reset: "+reason))}
		}

	case events.KindChatMessage:
		var p events.ChatMessage
		if err := json.Unmarshal(ev.Payload, &p); err == nil {
			return []string{fmt.Sprintf("%s %s %s", ts,
				m.pal.chat.Render(p.PlayerID+":"), p.Text)}
		}
	}

	m.logger.Debug("Unrendered event", "kind", ev.Kind)
	return []string{fmt.Sprintf("%s %s", ts, string(ev.Kind))}
}

// verbPhrase narrates a wire action string for the log.
func verbPhrase(action string, amount int64) string {
	switch action {
	case "fold":
		return "folds"
	case "check":
		return "checks"
	case "call":
		return fmt.Sprintf("calls %d", amount)
	case "bet":
		return fmt.Sprintf("bets %d", amount)
	case "raise":
		return fmt.Sprintf("raises to %d", amount)
	case "allin":
		return fmt.Sprintf("moves all in for %d", amount)
	default:
		if amount > 0 {
			return fmt.Sprintf("%s %d", action, amount)
		}
		return action
	}
}
