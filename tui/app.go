// ABOUTME: Top-level Bubble Tea AppModel that orchestrates all TUI sub-panels into a unified layout.
// ABOUTME: Implements tea.Model and routes keys to the playback controller, training session, and parameter panel.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2389-research/sapling/playback"
	"github.com/2389-research/sapling/trainapi"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Options configures an AppModel.
type Options struct {
	Context  context.Context
	Trainer  playback.Trainer
	Request  playback.Request
	Interval time.Duration
	// Source labels the training backend in the parameter panel.
	Source string
	// Replay, when set with ReplayID, loads an archived run at startup.
	Replay   *trainapi.Client
	ReplayID string
}

// AppModel is the top-level Bubble Tea model that composes all TUI sub-panels
// and routes messages between them.
type AppModel struct {
	tree      TreePanelModel
	space     SpacePanelModel
	params    ParamsPanelModel
	log       LogPanelModel
	statusBar StatusBarModel
	spinner   spinner.Model
	help      help.Model
	keys      keyMap

	ctx     context.Context
	screen  *screen
	bridge  *TickBridge
	ctrl    *playback.Controller
	session *playback.Session

	replay   *trainapi.Client
	replayID string

	training bool // a TrainCmd is outstanding
	frames   int  // screen frame count already applied to the panels
	width    int
	height   int
}

// NewAppModel creates an AppModel with a fresh controller and session.
func NewAppModel(opts Options) AppModel {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	source := opts.Source
	if source == "" {
		source = "local"
	}

	scr := &screen{}
	bridge := NewTickBridge(nil)
	ctrl := playback.NewController(scr,
		playback.WithScheduler(bridge),
		playback.WithInterval(opts.Interval),
	)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = RunningSpinnerStyle

	return AppModel{
		tree:      NewTreePanelModel(),
		space:     NewSpacePanelModel(),
		params:    NewParamsPanelModel(opts.Request, source),
		log:       NewLogPanelModel(200),
		statusBar: NewStatusBarModel(),
		spinner:   sp,
		help:      help.New(),
		keys:      defaultKeyMap(),
		ctx:       ctx,
		screen:    scr,
		bridge:    bridge,
		ctrl:      ctrl,
		session:   playback.NewSession(ctrl, opts.Trainer, scr),
		replay:    opts.Replay,
		replayID:  opts.ReplayID,
	}
}

// Bridge returns the tick scheduler so the caller can attach program.Send once
// the tea.Program exists. The pointer stays valid across AppModel copies.
func (m AppModel) Bridge() *TickBridge {
	return m.bridge
}

// Controller returns the playback controller.
func (m AppModel) Controller() *playback.Controller {
	return m.ctrl
}

// Init implements tea.Model.
func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	if m.replay != nil && m.replayID != "" {
		cmds = append(cmds, ReplayCmd(m.ctx, m.replay, m.replayID))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model. Routes incoming messages to the appropriate
// sub-panel and returns the updated model with any follow-up commands.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ctrl.OnResize()

	case tea.KeyMsg:
		var quit bool
		cmd, quit = m.handleKey(msg)
		if quit {
			return m, cmd
		}

	case PlayTickMsg:
		if msg.fire != nil {
			msg.fire()
		}

	case TrainDoneMsg:
		m.training = false
		if msg.Err == nil {
			m.params.SetTrained(msg.Request)
			m.statusBar.Loaded(time.Now())
		} else if errors.Is(msg.Err, playback.ErrTrainingInFlight) {
			m.log.Add(LevelWarn, "Training already in progress")
		}

	case ReplayMsg:
		m.handleReplay(msg)

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
	}

	m.sync()
	return m, cmd
}

// handleKey applies a key press. quit reports that the program is exiting.
func (m *AppModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.Close()
		return tea.Quit, true
	case key.Matches(msg, m.keys.Train):
		if m.training || m.session.Busy() {
			return nil, false
		}
		m.training = true
		req := m.params.Request()
		m.log.Add(LevelInfo, fmt.Sprintf("Training %s max_depth=%d min_samples_split=%d criterion=%s",
			req.Dataset, req.Params.MaxDepth, req.Params.MinSamplesSplit, req.Params.Criterion))
		return TrainCmd(m.ctx, m.session, req), false
	case key.Matches(msg, m.keys.Back):
		m.ctrl.StepBackward()
	case key.Matches(msg, m.keys.Forward):
		m.ctrl.StepForward()
	case key.Matches(msg, m.keys.Play):
		m.ctrl.TogglePlay()
	case key.Matches(msg, m.keys.First):
		m.ctrl.Seek(0)
	case key.Matches(msg, m.keys.Last):
		m.ctrl.Seek(m.ctrl.State().Length - 1)
	case key.Matches(msg, m.keys.Dataset):
		m.params.CycleDataset()
	case key.Matches(msg, m.keys.Criterion):
		m.params.CycleCriterion()
	case key.Matches(msg, m.keys.DepthUp):
		m.params.AdjustDepth(1)
	case key.Matches(msg, m.keys.DepthDown):
		m.params.AdjustDepth(-1)
	case key.Matches(msg, m.keys.MinUp):
		m.params.AdjustMinSamples(1)
	case key.Matches(msg, m.keys.MinDown):
		m.params.AdjustMinSamples(-1)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
	}
	return nil, false
}

// handleReplay loads an archived run into the controller.
func (m *AppModel) handleReplay(msg ReplayMsg) {
	if msg.Err != nil {
		m.log.Add(LevelError, fmt.Sprintf("Could not load run %s: %v", msg.RunID, msg.Err))
		return
	}
	if !m.ctrl.Load(msg.History) {
		m.log.Add(LevelError, fmt.Sprintf("Run %s has no steps", msg.RunID))
		return
	}
	m.params.SetReplay(msg.RunID)
	m.statusBar.Loaded(time.Now())
	m.log.Add(LevelSuccess, fmt.Sprintf("Loaded run %s (%d steps)", msg.RunID, len(msg.History)))
}

// sync copies the screen into the panels. Snapshot panels are rebuilt only when
// the controller rendered a new frame.
func (m *AppModel) sync() {
	v := m.screen.take()
	if v.frames != m.frames {
		m.frames = v.frames
		m.tree.SetSnapshot(v.snap)
		m.space.SetSnapshot(v.snap)
	}
	m.statusBar.SetState(v.state)
	m.statusBar.SetBusy(v.busy || m.training, m.spinner.View())
	for _, n := range v.notes {
		m.log.Append(n)
	}
}

// layout sizes every panel for the current window.
func (m *AppModel) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	helpHeight := lipgloss.Height(m.help.View(m.keys))
	bottomHeight := 9
	topHeight := m.height - bottomHeight - helpHeight - 1
	if topHeight < 6 {
		topHeight = 6
	}

	treeWidth := m.width * 55 / 100
	spaceWidth := m.width - treeWidth
	paramsWidth := m.width * 40 / 100
	logWidth := m.width - paramsWidth

	m.tree.SetSize(treeWidth, topHeight)
	m.space.SetSize(spaceWidth, topHeight)
	m.params.SetSize(paramsWidth, bottomHeight)
	m.log.SetSize(logWidth, bottomHeight)
	m.statusBar.SetWidth(m.width)
	m.help.Width = m.width
}

// View implements tea.Model. Renders the full TUI layout with all panels.
func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	// Minimum terminal size guard to prevent layout overflow
	if m.width < 60 || m.height < 20 {
		return fmt.Sprintf("Terminal too small (%dx%d). Minimum: 60x20.", m.width, m.height)
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top, m.tree.View(), m.space.View())
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, m.params.View(), m.log.View())

	var b strings.Builder
	b.WriteString(top)
	b.WriteString("\n")
	b.WriteString(bottom)
	b.WriteString("\n")
	b.WriteString(m.statusBar.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
