// Package tui hosts the simulation in a terminal: held keys become control
// samples and each frame draws the HUD and a top-down radar scope.
package tui

import (
	"context"
	"fmt"
	"math"
	"time"

	"void-arena/internal/game"

	"github.com/gdamore/tcell/v2"
)

const (
	frameInterval = 33 * time.Millisecond
	eventBuffer   = 100

	scopeWidth  = 41 // Odd so the ship sits on a column
	scopeHeight = 21
	scopeTop    = 6
)

// Engine is what the terminal host drives
type Engine interface {
	GetSnapshot() *game.GameSnapshot
	SubmitInput(game.ControlSample)
	Restart()
}

var (
	styleDefault  = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	styleHeader   = styleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleWarning  = styleDefault.Foreground(tcell.ColorYellow)
	styleDamage   = styleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleBorder   = styleDefault.Foreground(tcell.ColorDarkGray)
	styleShip     = styleDefault.Foreground(tcell.ColorLime).Bold(true)
	styleGameOver = styleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorRed).Bold(true)

	kindStyles = map[string]tcell.Style{
		"scout":   styleDefault.Foreground(tcell.ColorSkyblue),
		"fighter": styleDefault.Foreground(tcell.ColorOrange),
		"heavy":   styleDefault.Foreground(tcell.ColorFuchsia),
	}
)

// Host owns the screen for the lifetime of Run
type Host struct {
	screen tcell.Screen
	engine Engine
	keys   *keyHold
}

// NewHost wraps an initialized screen
func NewHost(screen tcell.Screen, engine Engine) *Host {
	return &Host{
		screen: screen,
		engine: engine,
		keys:   newKeyHold(),
	}
}

// Run polls terminal events and draws frames until ctx is done or the pilot
// quits with Esc or Ctrl-C.
func (h *Host) Run(ctx context.Context) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)
	events := h.pumpEvents(done, eventBuffer)

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-events:
			if !ok || !h.handleEvent(ev, time.Now()) {
				return
			}

		case now := <-ticker.C:
			h.frame(now)
		}
	}
}

// pumpEvents forwards terminal events until the screen is finalized or done
// is closed. The returned channel is closed when the pump exits.
func (h *Host) pumpEvents(done <-chan struct{}, buffer int) <-chan tcell.Event {
	events := make(chan tcell.Event, buffer)
	go func() {
		defer close(events)
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()
	return events
}

// handleEvent applies one terminal event. Returns false to quit.
func (h *Host) handleEvent(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			if ev.Rune() == 'r' || ev.Rune() == 'R' {
				h.keys.release()
				h.engine.Restart()
				return true
			}
			h.keys.press(ev.Rune(), now)
		}

	case *tcell.EventResize:
		h.screen.Sync()
	}
	return true
}

// frame submits the held keys and redraws
func (h *Host) frame(now time.Time) {
	h.engine.SubmitInput(h.keys.state(now).Sample())
	h.draw(h.engine.GetSnapshot())
}

func (h *Host) draw(snap *game.GameSnapshot) {
	h.screen.Clear()

	lines := hudLines(snap)
	for i, line := range lines {
		style := styleDefault
		switch {
		case i == 0:
			style = styleHeader
		case snap != nil && snap.GameOver && i == len(lines)-1:
			style = styleGameOver
		}
		drawText(h.screen, 1, i, line, style)
	}

	h.drawScope(snap)
	h.screen.Show()
}

// drawScope renders radar contacts with the ship at the centre and its nose
// pointing up.
func (h *Host) drawScope(snap *game.GameSnapshot) {
	left := 1
	right := left + scopeWidth + 1
	bottom := scopeTop + scopeHeight + 1

	for x := left; x <= right; x++ {
		h.screen.SetContent(x, scopeTop, tcell.RuneHLine, nil, styleBorder)
		h.screen.SetContent(x, bottom, tcell.RuneHLine, nil, styleBorder)
	}
	for y := scopeTop; y <= bottom; y++ {
		h.screen.SetContent(left, y, tcell.RuneVLine, nil, styleBorder)
		h.screen.SetContent(right, y, tcell.RuneVLine, nil, styleBorder)
	}
	h.screen.SetContent(left, scopeTop, tcell.RuneULCorner, nil, styleBorder)
	h.screen.SetContent(right, scopeTop, tcell.RuneURCorner, nil, styleBorder)
	h.screen.SetContent(left, bottom, tcell.RuneLLCorner, nil, styleBorder)
	h.screen.SetContent(right, bottom, tcell.RuneLRCorner, nil, styleBorder)

	cx, cy := left+1+scopeWidth/2, scopeTop+1+scopeHeight/2
	shipStyle := styleShip
	if snap != nil && snap.Ship.DamageFlash > 0 {
		shipStyle = styleDamage
	}
	h.screen.SetContent(cx, cy, '^', nil, shipStyle)

	if snap == nil {
		return
	}
	for _, c := range snap.HUD.Radar {
		col, row := scopeCell(c)
		style, ok := kindStyles[c.Kind]
		if !ok {
			style = styleWarning
		}
		h.screen.SetContent(left+1+col, scopeTop+1+row, kindGlyph(c.Kind), nil, style)
	}
}

// scopeCell maps a contact to a cell inside the scope
func scopeCell(c game.RadarContact) (col, row int) {
	halfW, halfH := float64(scopeWidth/2), float64(scopeHeight/2)
	col = int(math.Round(halfW + c.X/game.RadarRange*halfW))
	row = int(math.Round(halfH - c.Forward/game.RadarRange*halfH))
	col = max(0, min(scopeWidth-1, col))
	row = max(0, min(scopeHeight-1, row))
	return col, row
}

func kindGlyph(kind string) rune {
	switch kind {
	case "scout":
		return 's'
	case "fighter":
		return 'F'
	case "heavy":
		return 'H'
	default:
		return '?'
	}
}

// hudLines formats the pilot's readout for snap
func hudLines(snap *game.GameSnapshot) []string {
	if snap == nil {
		return []string{"VOID ARENA", "Waiting for simulation..."}
	}

	hud := snap.HUD
	nearest := "none"
	if hud.NearestEnemy >= 0 {
		nearest = fmt.Sprintf("%.0fm", hud.NearestEnemy)
	}

	status := ""
	if snap.Ship.Boosting {
		status += " BOOST"
	}
	if snap.Ship.DamageFlash > 0 {
		status += " HIT"
	}

	lines := []string{
		"VOID ARENA",
		fmt.Sprintf("SCORE %d  TIME %s  SHIELD %.0f%%%s", hud.Score, formatElapsed(hud.Elapsed), hud.ShieldPercent, status),
		fmt.Sprintf("SPEED %.1f  ENEMIES %d/%d  NEAREST %s", hud.Speed, hud.EnemyCount, hud.EnemyCap, nearest),
		"w/s thrust/brake  a/d yaw  q/e pitch  b boost  space fire  r restart  esc quit",
	}
	if snap.GameOver {
		lines = append(lines, fmt.Sprintf("GAME OVER  score %d  survived %s  press r to restart",
			snap.FinalScore, formatElapsed(snap.SurvivalTime)))
	}
	return lines
}

func formatElapsed(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}
