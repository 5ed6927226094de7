package console_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-watch/internal/app"
	"stock-watch/internal/console"
	"stock-watch/internal/market"
	"stock-watch/internal/refresh"
	"stock-watch/internal/watchlist"
)

func TestParseLine(t *testing.T) {
	cases := []struct {
		line string
		want []app.Event
	}{
		{"", nil},
		{"   ", nil},
		{"q", []app.Event{app.Rune('q')}},
		{" R ", []app.Event{app.Rune('r')}},
		{"d", []app.Event{app.Rune('d')}},
		{"u", []app.Event{app.Rune('u')}},
		{"j", []app.Event{app.Rune('j')}},
		{"k", []app.Event{app.KeyEvent{Key: app.KeyUp}}},
		{"up", []app.Event{app.KeyEvent{Key: app.KeyUp}}},
		{"down", []app.Event{app.KeyEvent{Key: app.KeyDown}}},
		{"n NVDA", []app.Event{app.Rune('n'), app.Rune('N'), app.Rune('V'), app.Rune('D'), app.Rune('A'), app.KeyEvent{Key: app.KeyEnter}}},
		{"n", nil},
		{"sel 0", []app.Event{app.MouseEvent{Kind: app.MouseRelease, Row: 2}}},
		{"sel -1", nil},
		{"sel x", nil},
		{"q now", nil},
		{"hello", nil},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			assert.Equal(t, tc.want, console.ParseLine(tc.line))
		})
	}
}

func TestParseLine_DrivesApp(t *testing.T) {
	a := app.New(nopRefresher{}, &memStorage{})
	for _, ev := range console.ParseLine("n 600519") {
		a.Handle(ev)
	}
	for _, ev := range console.ParseLine("sel 0") {
		a.Handle(ev)
	}
	v := a.View()
	require.Len(t, v.Entries, 1)
	assert.Equal(t, "600519", v.Entries[0].Code)
	assert.Equal(t, 0, v.Selected)
}

func TestRender(t *testing.T) {
	v := app.View{
		State: app.StateNormal,
		Entries: []watchlist.Entry{
			{Code: "600519", Quote: market.Quote{Code: "600519", Title: "Kweichow Moutai", Price: 1680, PercentChange: -1.25, Change: -21.3, Volume: 12345, Amount: 2075000000}},
			watchlist.NewEntry("NVDA"),
		},
		Selected:    1,
		LastRefresh: time.Now(),
	}
	var buf bytes.Buffer
	require.NoError(t, console.Render(&buf, v, console.Options{Title: "stock-watch", Version: "v1.2.3"}))

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "stock-watch v1.2.3")
	assert.Contains(t, lines[0], "[normal]")
	assert.Contains(t, lines[0], "last refresh")
	assert.Contains(t, lines[1], "CODE")
	assert.Contains(t, lines[2], "1680.00")
	assert.Contains(t, lines[2], "-1.25%")
	assert.Contains(t, lines[2], "12,345")
	assert.Contains(t, lines[2], "2,075,000,000")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[3]), ">"))
	assert.Contains(t, lines[3], "NVDA")
	assert.Contains(t, lines[4], "quit[q]")
}

func TestRender_AddingAndError(t *testing.T) {
	v := app.View{State: app.StateAdding, Input: "x105.AA", Selected: -1, Error: "refresh worker unavailable"}
	var buf bytes.Buffer
	require.NoError(t, console.Render(&buf, v, console.Options{Title: "stock-watch", Version: "dev"}))

	out := buf.String()
	assert.Contains(t, out, "[adding]")
	assert.Contains(t, out, "error: refresh worker unavailable")
	assert.Contains(t, out, "add> x105.AA")
}

func TestRender_WriteError(t *testing.T) {
	err := console.Render(failWriter{}, app.View{}, console.Options{})
	require.Error(t, err)
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

type nopRefresher struct{}

func (nopRefresher) RequestRefresh([]string) error { return nil }
func (nopRefresher) Drain() []refresh.Result { return nil }

type memStorage struct{ codes []string }

func (m *memStorage) Load() ([]string, error) { return m.codes, nil }
func (m *memStorage) Save(codes []string) error { m.codes = codes; return nil }
