// Package terminal draws the simulation in a terminal and turns key presses
// into control state.
package terminal

import (
	"fmt"
	"math"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/conga/internal/config"
	"github.com/zeusync/conga/internal/core/conga"
	"github.com/zeusync/conga/internal/server"
)

const (
	glyphPlayer = '@'
	glyphNote   = '♪'
	glyphOther  = '?'
)

var (
	stylePlayer = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleNote   = tcell.StyleDefault.Foreground(tcell.ColorPurple)
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)

	stateStyles = map[string]tcell.Style{
		conga.StateIdle:       tcell.StyleDefault.Foreground(tcell.ColorGray),
		conga.StateWaitForEnd: tcell.StyleDefault.Foreground(tcell.ColorYellow),
		conga.StateGoToLast:   tcell.StyleDefault.Foreground(tcell.ColorAqua),
		conga.StateFollow:     tcell.StyleDefault.Foreground(tcell.ColorGreen),
	}
)

// Viewer renders snapshots top-down: +Z points up and +X points left, so a
// left turn of the player also goes left on screen. The bottom row is the
// status line.
type Viewer struct {
	screen tcell.Screen
	view   config.ViewConfig
}

func NewViewer(screen tcell.Screen, view config.ViewConfig) *Viewer {
	return &Viewer{screen: screen, view: view}
}

// SetView changes the visible rectangle, e.g. after a config reload.
func (v *Viewer) SetView(view config.ViewConfig) {
	v.view = view
}

// Cell maps a world position to a screen cell. ok is false outside the view.
func (v *Viewer) Cell(x, z float64) (col, row int, ok bool) {
	w, h := v.screen.Size()
	rows := h - 1
	if w <= 0 || rows <= 0 {
		return 0, 0, false
	}
	if x < v.view.MinX || x > v.view.MaxX || z < v.view.MinZ || z > v.view.MaxZ {
		return 0, 0, false
	}
	col = int(math.Round((v.view.MaxX - x) / (v.view.MaxX - v.view.MinX) * float64(w-1)))
	row = int(math.Round((v.view.MaxZ - z) / (v.view.MaxZ - v.view.MinZ) * float64(rows-1)))
	return col, row, true
}

// Draw replaces the screen content with the snapshot.
func (v *Viewer) Draw(s server.Snapshot) {
	v.screen.Clear()

	// Notes first so bodies stay on top.
	for _, e := range s.Entities {
		if e.Kind == server.KindNote {
			v.put(e, glyphNote, styleNote)
		}
	}
	for _, e := range s.Entities {
		switch e.Kind {
		case server.KindPlayer:
			v.put(e, glyphPlayer, stylePlayer)
		case server.KindAnimal:
			style, ok := stateStyles[e.State]
			if !ok {
				style = tcell.StyleDefault
			}
			v.put(e, animalGlyph(e), style)
		case server.KindOther:
			v.put(e, glyphOther, tcell.StyleDefault)
		}
	}

	v.status(fmt.Sprintf(" frame %d  t=%.1fs  chain %d  entities %d  ←/→ steer  q quit",
		s.Frame, s.Time, len(s.Chain), len(s.Entities)))
	v.screen.Show()
}

func (v *Viewer) put(e server.EntityState, glyph rune, style tcell.Style) {
	col, row, ok := v.Cell(e.X, e.Z)
	if !ok {
		return
	}
	v.screen.SetContent(col, row, glyph, nil, style)
}

func (v *Viewer) status(text string) {
	w, h := v.screen.Size()
	if h <= 0 {
		return
	}
	runes := []rune(text)
	for x := 0; x < w; x++ {
		r := ' '
		if x < len(runes) {
			r = runes[x]
		}
		v.screen.SetContent(x, h-1, r, nil, styleStatus)
	}
}

// animalGlyph is the model initial, capitalised once the animal is in line.
func animalGlyph(e server.EntityState) rune {
	name := e.Model
	if name == "" {
		name = e.Name
	}
	if name == "" {
		return glyphOther
	}
	r := []rune(name)[0]
	if e.State == conga.StateGoToLast || e.State == conga.StateFollow {
		return unicode.ToUpper(r)
	}
	return unicode.ToLower(r)
}
