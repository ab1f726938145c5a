package console

// KeyType is the terminal-independent key vocabulary the console reacts to.
type KeyType int

const (
	KeyOther KeyType = iota
	KeyRunes
	KeySpace
	KeyBackspace
	KeyUp
	KeyDown
	KeyEnter
	KeyTab
	KeyEsc
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDown
	KeyCtrlF
	KeyCtrlE
)

// Key is one keystroke.
type Key struct {
	Type  KeyType
	Runes []rune
}

// Digit returns n for a single rune '1'..'9'.
func (k Key) Digit() (int, bool) {
	if k.Type != KeyRunes || len(k.Runes) != 1 {
		return 0, false
	}
	r := k.Runes[0]
	if r < '1' || r > '9' {
		return 0, false
	}
	return int(r - '0'), true
}
