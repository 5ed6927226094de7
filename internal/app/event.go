package app

// Key identifies a keyboard key. KeyRune carries its character in KeyEvent.Rune.
type Key int

const (
	KeyRune Key = iota
	KeyEnter
	KeyEsc
	KeyBackspace
	KeyUp
	KeyDown
)

type MouseKind int

const (
	MouseRelease MouseKind = iota
	MouseScrollUp
	MouseScrollDown
)

// Event is either a KeyEvent or a MouseEvent.
type Event interface {
	isEvent()
}

type KeyEvent struct {
	Key  Key
	Rune rune
}

// MouseEvent rows are terminal rows; the first list row is row 2.
type MouseEvent struct {
	Kind MouseKind
	Row  int
}

func (KeyEvent) isEvent()   {}
func (MouseEvent) isEvent() {}

func Rune(r rune) KeyEvent { return KeyEvent{Key: KeyRune, Rune: r} }
