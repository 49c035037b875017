// internal/app/app.go
package app

import (
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/reel/internal/catalog"
	"github.com/llehouerou/reel/internal/keymap"
	"github.com/llehouerou/reel/internal/notify"
	"github.com/llehouerou/reel/internal/playback"
	"github.com/llehouerou/reel/internal/player"
)

// Deps are the collaborators the UI drives.
type Deps struct {
	Controller    *playback.Controller
	Manager       *playback.Manager
	Log           logrus.FieldLogger
	ConfigUpdates <-chan ConfigUpdate // optional
	Notifier      notify.Notifier     // optional
}

// Model is the root application model.
type Model struct {
	Ctrl    *playback.Controller
	Manager *playback.Manager
	Log     logrus.FieldLogger
	Keys    *keymap.Resolver

	sub       *playback.Subscription
	lifecycle *lifecycleQueue
	configCh  <-chan ConfigUpdate
	notifier  notify.Notifier
	notifyID  uint32

	Cursor    int
	Buffering bool
	Spinner   spinner.Model
	Position  time.Duration
	Tags      *player.TagInfo
	LastEvent string
	ErrorMsg  string
	ShowHelp  bool
	Closed    bool
	Width     int
	Height    int
}

// New creates the model with the cursor on the retained source.
func New(d Deps) Model {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Accent

	m := Model{
		Ctrl:      d.Controller,
		Manager:   d.Manager,
		Log:       log.WithField("component", "app"),
		Keys:      keymap.Default(),
		sub:       d.Manager.Subscribe(),
		lifecycle: &lifecycleQueue{},
		configCh:  d.ConfigUpdates,
		notifier:  d.Notifier,
		Spinner:   sp,
	}
	m.Cursor = max(slices.Index(m.sourceIDs(), m.Ctrl.State().Source), 0)
	return m
}

// Init implements tea.Model. Playback starts as if the host had resumed.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.Spinner.Tick,
		m.waitForEvent(),
		m.waitForStatus(),
		m.waitForError(),
		m.waitForConfig(),
		m.resumeCmd(),
		TickCmd(),
	)
}

func (m Model) catalog() *catalog.Catalog { return m.Manager.Catalog() }

func (m Model) sourceIDs() []catalog.SourceID { return m.catalog().IDs() }

// clampCursor keeps the cursor inside the current catalog.
func (m *Model) clampCursor() {
	n := len(m.sourceIDs())
	m.Cursor = min(max(m.Cursor, 0), n-1)
}
