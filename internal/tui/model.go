package tui

import (
	"context"
	"database/sql"
	"strings"

	"github.com/michaelscutari/assetpath/internal/canon"
	"github.com/michaelscutari/assetpath/internal/content"
	"github.com/michaelscutari/assetpath/internal/coursekey"
	"github.com/michaelscutari/assetpath/internal/db"

	tea "github.com/charmbracelet/bubbletea"
)

// SortColumn represents the current sort field.
type SortColumn int

const (
	SortByName SortColumn = iota
	SortBySize
	SortByType
)

func (s SortColumn) String() string {
	switch s {
	case SortBySize:
		return "size"
	case SortByType:
		return "type"
	default:
		return "name"
	}
}

const maxAssets = 5000

// Model holds the TUI state.
type Model struct {
	db           *sql.DB
	course       coursekey.CourseKey
	baseURL      string
	canon        *canon.Canonicalizer
	allAssets    []*content.StaticContent
	assets       []*content.StaticContent
	stats        *db.CourseStats
	cursor       int
	sort         SortColumn
	width        int
	height       int
	filter       string
	filterActive bool
	loaded       bool
	err          error

	// selURL is the canonical URL of the selection, recomputed in Update
	// when the selection or the asset list changes.
	selURL   string
	selKey   string
	selStale bool
}

// NewModel creates a browser for the assets of one course. baseURL is
// the CDN host resolved at start-up, empty for none.
func NewModel(database *sql.DB, course coursekey.CourseKey, baseURL string, c *canon.Canonicalizer) *Model {
	if c == nil {
		c = canon.New(db.Locks{DB: database})
	}
	return &Model{
		db:      database,
		course:  course,
		baseURL: baseURL,
		canon:   c,
		sort:    SortByName,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.loadAssets()
}

type assetsLoadedMsg struct {
	assets []*content.StaticContent
	stats  *db.CourseStats
	err    error
}

type lockToggledMsg struct {
	err error
}

func (m *Model) loadAssets() tea.Cmd {
	return func() tea.Msg {
		assets, err := db.ListAssets(m.db, m.course, m.sort.String(), maxAssets)
		if err != nil {
			return assetsLoadedMsg{err: err}
		}

		stats, err := db.GetCourseStats(m.db, m.course)
		if err != nil {
			return assetsLoadedMsg{err: err}
		}

		return assetsLoadedMsg{
			assets: assets,
			stats:  stats,
		}
	}
}

func (m *Model) toggleLock(c *content.StaticContent) tea.Cmd {
	key := c.Location
	locked := !c.Locked
	return func() tea.Msg {
		return lockToggledMsg{err: db.SetLocked(m.db, key, locked)}
	}
}

// canonicalURL is the URL a browser would load for c.
func (m *Model) canonicalURL(c *content.StaticContent) string {
	return m.canon.Canonicalize(context.Background(), m.course, c.Location.Path(), m.baseURL)
}

func (m *Model) refreshSelection() {
	sel := m.selected()
	if sel == nil {
		m.selURL, m.selKey = "", ""
		return
	}
	key := sel.Location.String()
	if key == m.selKey && !m.selStale {
		return
	}
	m.selKey = key
	m.selURL = m.canonicalURL(sel)
	m.selStale = false
}

func (m *Model) selected() *content.StaticContent {
	if len(m.assets) == 0 || m.cursor >= len(m.assets) {
		return nil
	}
	return m.assets[m.cursor]
}

func (m *Model) helpLine() string {
	if m.filterActive {
		return "Type to filter | Enter: apply | Esc: clear | q: quit"
	}
	return "↑/↓ move | n/s/t: sort | space: lock | r: reload | /: filter | q: quit"
}

func (m *Model) setAssets(assets []*content.StaticContent) {
	m.allAssets = assets
	m.applyFilter()
}

func (m *Model) applyFilter() {
	if m.filter == "" {
		m.assets = m.allAssets
	} else {
		filtered := make([]*content.StaticContent, 0, len(m.allAssets))
		needle := strings.ToLower(m.filter)
		for _, c := range m.allAssets {
			if strings.Contains(strings.ToLower(c.Name), needle) ||
				strings.Contains(strings.ToLower(c.Location.Name), needle) {
				filtered = append(filtered, c)
			}
		}
		m.assets = filtered
	}
	if m.cursor >= len(m.assets) {
		m.cursor = max(0, len(m.assets)-1)
	}
}
