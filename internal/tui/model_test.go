package tui

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/michaelscutari/assetpath/internal/canon"
	"github.com/michaelscutari/assetpath/internal/content"
	"github.com/michaelscutari/assetpath/internal/coursekey"
	"github.com/michaelscutari/assetpath/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tea "github.com/charmbracelet/bubbletea"
)

func seed(t *testing.T) (*sql.DB, coursekey.CourseKey) {
	t.Helper()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	course := coursekey.NewCourseKey("a", "b", "c")
	assets := []*content.StaticContent{
		{Location: content.ComputeLocation(course, "logo.png"), Name: "logo.png", ContentType: "image/png", Length: 4096, Created: time.Unix(1, 0)},
		{Location: content.ComputeLocation(course, "exam.pdf"), Name: "exam.pdf", ContentType: "application/pdf", Length: 100, Locked: true, Created: time.Unix(2, 0)},
		{Location: content.ComputeLocation(course, "app.js"), Name: "app.js", ContentType: "text/javascript", Length: 10, Created: time.Unix(3, 0)},
	}
	require.NoError(t, db.SaveAssets(database, assets))
	return database, course
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	next, follow := m.Update(cmd())
	require.Same(t, m, next)
	if follow != nil {
		run(t, m, follow)
	}
}

func press(m *Model, key string) tea.Cmd {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func TestModelLoadsAndSorts(t *testing.T) {
	database, course := seed(t)
	m := NewModel(database, course, "cdn.example.com", nil)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	run(t, m, m.Init())
	require.Len(t, m.assets, 3)
	assert.Equal(t, "app.js", m.assets[0].Name)
	assert.Equal(t, int64(3), m.stats.AssetCount)

	run(t, m, press(m, "s"))
	assert.Equal(t, SortBySize, m.sort)
	assert.Equal(t, "logo.png", m.assets[0].Name)

	run(t, m, press(m, "t"))
	assert.Equal(t, "exam.pdf", m.assets[0].Name)
}

func TestModelFilter(t *testing.T) {
	database, course := seed(t)
	m := NewModel(database, course, "", nil)
	run(t, m, m.Init())

	press(m, "/")
	assert.True(t, m.filterActive)
	press(m, "l")
	press(m, "o")
	require.Len(t, m.assets, 1)
	assert.Equal(t, "logo.png", m.assets[0].Name)

	press(m, "esc")
	assert.False(t, m.filterActive)
	assert.Len(t, m.assets, 3)
}

func TestModelToggleLock(t *testing.T) {
	database, course := seed(t)
	m := NewModel(database, course, "", nil)
	run(t, m, m.Init())

	// app.js is first by name.
	run(t, m, press(m, " "))
	assert.True(t, m.assets[0].Locked)
	assert.Equal(t, int64(2), m.stats.LockedCount)
}

func TestViewShowsCanonicalURL(t *testing.T) {
	database, course := seed(t)
	m := NewModel(database, course, "cdn.example.com", canon.New(db.Locks{DB: database}))
	m.Update(tea.WindowSizeMsg{Width: 160, Height: 30})
	run(t, m, m.Init())

	view := m.View()
	assert.Contains(t, view, "URL: //cdn.example.com/asset-v1:a+b+c+type@asset+block@app.js")
	assert.Contains(t, view, "Assets: 3")

	// Locked assets never carry the CDN host.
	press(m, "down")
	assert.Equal(t, "exam.pdf", m.selected().Name)
	assert.Contains(t, m.View(), "URL: /asset-v1:a+b+c+type@asset+block@exam.pdf")
	assert.False(t, strings.Contains(m.View(), "URL: //cdn.example.com/asset-v1:a+b+c+type@asset+block@exam.pdf"))
}

func TestViewBeforeLoad(t *testing.T) {
	m := NewModel(nil, coursekey.NewCourseKey("a", "b", "c"), "", canon.New(nil))
	assert.Equal(t, "Loading...", m.View())
}

type countingLocks struct {
	calls int
}

func (c *countingLocks) IsLocked(context.Context, coursekey.AssetKey) (bool, error) {
	c.calls++
	return false, nil
}

func TestViewDoesNotLookUpLocks(t *testing.T) {
	database, course := seed(t)
	locks := &countingLocks{}
	m := NewModel(database, course, "cdn.example.com", canon.New(locks))
	run(t, m, m.Init())
	require.Equal(t, 1, locks.calls)

	for i := 0; i < 3; i++ {
		m.View()
	}
	assert.Equal(t, 1, locks.calls)

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, 1, locks.calls)

	press(m, "down")
	assert.Equal(t, 2, locks.calls)
	assert.Equal(t, "//cdn.example.com/asset-v1:a+b+c+type@asset+block@exam.pdf", m.selURL)
}
