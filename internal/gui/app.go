package gui

import (
	"fmt"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/atomsim/internal/atomic"
	"github.com/san-kum/atomsim/internal/config"
	"github.com/san-kum/atomsim/internal/driver"
	"github.com/san-kum/atomsim/internal/input"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
)

const (
	maxCatchUp   = 4
	telemetryCap = 200
)

type App struct {
	Config  *config.Config
	Name    string
	Runner  *driver.Runner
	Sampler *input.Sampler
	Clock   *driver.Clock
	Running bool
	ShowHUD bool
	Font    rl.Font

	Telemetry []float64 // mean speed per tick
	seed      int64
	surface   *Surface
	lastCmds  []atomic.DrawCommand
}

func initWindow(w, h int32) {
	rl.InitWindow(w, h, "atomsim")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// loadFont loads Liberation Mono when present and falls back to the
// built-in font.
func loadFont() rl.Font {
	font := rl.LoadFontEx("/usr/share/fonts/liberation/LiberationMono-Regular.ttf", 32, nil, 0)
	if font.Texture.ID == 0 {
		return rl.GetFontDefault()
	}
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// Run opens a window sized to the world and blocks until it is closed.
func Run(cfg *config.Config, name string) error {
	if _, err := cfg.World(); err != nil {
		return err
	}
	initWindow(int32(cfg.Width), int32(cfg.Height))
	defer rl.CloseWindow()

	app, err := NewApp(cfg, name)
	if err != nil {
		return err
	}
	app.RunLoop()
	return nil
}

func NewApp(cfg *config.Config, name string) (*App, error) {
	app := &App{
		Config:    cfg,
		Name:      name,
		Sampler:   input.NewSampler(cfg.ActiveDuration()),
		Clock:     driver.NewClock(cfg.FPS, maxCatchUp),
		Running:   true,
		ShowHUD:   true,
		Font:      loadFont(),
		Telemetry: make([]float64, 0, telemetryCap),
		seed:      cfg.Seed,
		surface:   &Surface{},
	}
	if err := app.reset(); err != nil {
		return nil, err
	}
	return app, nil
}

func (a *App) reset() error {
	wc, err := a.Config.World()
	if err != nil {
		return err
	}
	w, err := atomic.New(wc, rand.New(rand.NewSource(a.seed)))
	if err != nil {
		return err
	}
	a.Runner = driver.New(w, a.Sampler)
	a.Clock.Reset()
	a.Telemetry = a.Telemetry[:0]
	a.lastCmds = nil
	return nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) {
			return
		}
		a.Update()
		a.Draw()
	}
}

func (a *App) Update() {
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyH) {
		a.ShowHUD = !a.ShowHUD
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.seed++
		if err := a.reset(); err != nil {
			fmt.Println("reset:", err)
		}
	}

	mouse := rl.GetMousePosition()
	if d := rl.GetMouseDelta(); d.X != 0 || d.Y != 0 {
		a.Sampler.Move(float64(mouse.X), float64(mouse.Y))
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		a.Sampler.Click(float64(mouse.X), float64(mouse.Y))
	}

	if !a.Running {
		return
	}
	elapsed := time.Duration(float64(rl.GetFrameTime()) * float64(time.Second))
	for n := a.Clock.Advance(elapsed); n > 0; n-- {
		a.lastCmds = a.Runner.Step(a.Config.Dt)
		a.Telemetry = append(a.Telemetry, a.Runner.World().Stats().MeanSpeed)
		if len(a.Telemetry) > telemetryCap {
			a.Telemetry = a.Telemetry[1:]
		}
	}
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	atomic.Replay(a.lastCmds, a.surface)
	if a.ShowHUD {
		a.DrawHUD()
	}

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	a.drawText("atomsim", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.Name), 150, 34, 16, ColText)

	st := a.Runner.World().Stats()
	a.drawText(fmt.Sprintf("tick %d  links %d  collisions %d  bursting %d",
		a.Runner.Tick(), st.Links, st.Collisions, st.Bursting), 30, 60, 14, ColText)

	status := "RUNNING"
	col := ColSelect
	if !a.Running {
		status = "PAUSED"
		col = ColTextDim
	}
	h := int(a.Config.Height)
	a.drawText(status, int(a.Config.Width)-110, 30, 16, col)
	a.drawText("[SPACE] PAUSE  [R] RESEED  [H] HUD  [Q] QUIT", 30, h-30, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), int(a.Config.Width)-110, h-30, 14, ColTextDim)

	a.DrawTelemetry()
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

// DrawTelemetry plots recent mean speed as a line strip.
func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 30, int(a.Config.Height)-110
	width, height := 300, 60

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("v: %.2f", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}
