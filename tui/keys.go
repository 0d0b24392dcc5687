package tui

import "github.com/gdamore/tcell/v2"

// Command is a user action decoded from a key press.
type Command int

const (
	CmdNone Command = iota
	CmdNext
	CmdPrev
	CmdExplode
	CmdClear
	CmdToggleWind
	CmdPowerUp
	CmdPowerDown
	CmdPause
	CmdQuit
)

// powerStep is the power change per +/- press, in MW.
const powerStep = 250.0

// CommandFor decodes a key event.
func CommandFor(ev *tcell.EventKey) Command {
	switch ev.Key() {
	case tcell.KeyTab:
		return CmdNext
	case tcell.KeyBacktab:
		return CmdPrev
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return CmdQuit
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'e':
			return CmdExplode
		case 'c':
			return CmdClear
		case 'w':
			return CmdToggleWind
		case '+', '=':
			return CmdPowerUp
		case '-', '_':
			return CmdPowerDown
		case ' ':
			return CmdPause
		case 'q':
			return CmdQuit
		}
	}
	return CmdNone
}
