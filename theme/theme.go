package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Key help widget
	Solid rune // ■ bound key
	Empty rune // □ unbound

	// Piano roll cells
	NoteStart rune // ● note onset
	NoteHold  rune // ━ note sustained
	Rest      rune // · nothing sounding
	BarLine   rune // │ measure boundary
	Playhead  rune // ▶ playback position
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Plasma()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Solid: '■',
			Empty: '□',

			NoteStart: '●',
			NoteHold:  '━',
			Rest:      '·',
			BarLine:   '│',
			Playhead:  '▶',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleSurface = 0.1 // dark purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleCursor  = 0.6 // rose pink
	RoleActive  = 0.7 // soft red
	RoleWarning = 0.8 // orange
	RoleSuccess = 1.0 // bright yellow
)

// voiceLow..voiceHigh is the palette band used for note colors; the darkest
// end is unreadable on a dark terminal
const (
	voiceLow  = 0.35
	voiceHigh = 1.0
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// VoiceRGB spreads n voices evenly over the readable part of the palette
func (t *Theme) VoiceRGB(seq, n int) RGB {
	if n <= 1 {
		return t.Palette.Lookup(voiceHigh)
	}
	norm := voiceLow + (voiceHigh-voiceLow)*float64(seq)/float64(n-1)
	return t.Palette.Lookup(norm)
}

// Voice returns the color of sequence seq out of n
func (t *Theme) Voice(seq, n int) lipgloss.Color {
	return rgbToLipgloss(t.VoiceRGB(seq, n))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
