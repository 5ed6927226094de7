package console

import (
	"strconv"
	"strings"

	"stock-watch/internal/app"
)

// firstListRow matches the row where Render prints the first entry.
const firstListRow = 2

// ParseLine turns one line of terminal input into app events. Unknown
// commands yield nothing.
func ParseLine(line string) []app.Event {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd := strings.ToLower(fields[0])
	switch cmd {
	case "q", "r", "d", "u", "j":
		if len(fields) == 1 {
			return []app.Event{app.Rune(rune(cmd[0]))}
		}
	case "k", "up":
		return []app.Event{app.KeyEvent{Key: app.KeyUp}}
	case "down":
		return []app.Event{app.KeyEvent{Key: app.KeyDown}}
	case "n":
		if len(fields) != 2 {
			return nil
		}
		events := []app.Event{app.Rune('n')}
		for _, r := range fields[1] {
			events = append(events, app.Rune(r))
		}
		return append(events, app.KeyEvent{Key: app.KeyEnter})
	case "sel":
		if len(fields) != 2 {
			return nil
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 0 {
			return nil
		}
		return []app.Event{app.MouseEvent{Kind: app.MouseRelease, Row: n + firstListRow}}
	}
	return nil
}
