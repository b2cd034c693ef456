package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io/fs"
	"log"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/younwookim/stepper/internal/application/output"
	"github.com/younwookim/stepper/internal/application/replay"
	"github.com/younwookim/stepper/internal/application/system"
	"github.com/younwookim/stepper/internal/domain/entity"
	"github.com/younwookim/stepper/internal/infrastructure/config"
	"github.com/younwookim/stepper/internal/transport/ws"
)

// Colors for rendering
var (
	colorBG      = color.RGBA{26, 26, 46, 255}
	colorGrid    = color.RGBA{40, 40, 64, 255}
	colorBounds  = color.RGBA{200, 50, 50, 255}
	colorBody    = color.RGBA{100, 200, 100, 255}
	colorAir     = color.RGBA{150, 230, 150, 255}
	colorShadow  = color.RGBA{0, 0, 0, 120}
	colorHeading = color.RGBA{255, 215, 0, 255}
	colorTarget  = color.RGBA{255, 255, 255, 120}
)

// Game implements ebiten.Game interface
type Game struct {
	config        *config.GameConfig
	body          *entity.Body
	scheduler     *system.Scheduler
	physicsSystem *system.PhysicsSystem
	inputSystem   *system.InputSystem
	screenW       int
	screenH       int
	ppu           float64
	dt            float64 // milliseconds
	paused        bool

	// Where calls to the scheduler go; a Recorder when recording
	sink     replay.Sink
	recorder *replay.Recorder
	replayer *replay.Replayer

	bridge *ws.Bridge

	last     output.Snapshot
	received int
	ended    bool
}

// Options selects the demo's optional modes
type Options struct {
	RecordFilename string
	Replay         *replay.ReplayData
	Bridge         *ws.Bridge
	Logger         *slog.Logger
}

// NewGame creates a new game instance
func NewGame(cfg *config.GameConfig, opts Options) *Game {
	physicsSystem := system.NewPhysicsSystem(cfg.Physics)

	ctrl := cfg.Controller
	schedOpts := system.Options{
		MaxActions:     ctrl.MaxActions,
		MovementBounds: ctrl.MovementBounds,
		OutputCapacity: ctrl.OutputCapacity,
		Logger:         opts.Logger,
	}
	if ctrl.GravityAware {
		schedOpts.Gravity = physicsSystem.Gravity()
	}
	if opts.Replay != nil {
		// the recording decides, not the local config
		schedOpts.MovementBounds = opts.Replay.MovementBounds
		schedOpts.Gravity = nil
		if opts.Replay.GravityAware {
			schedOpts.Gravity = physicsSystem.Gravity()
		}
	}
	scheduler := system.NewScheduler(schedOpts)

	body := entity.NewBody(mgl64.Vec3{0, cfg.Physics.Physics.GroundY, 0}, 0)
	body.OnGround = true
	body.ApplyForce(physicsSystem.Gravity())

	framerate := cfg.Physics.Display.Framerate
	if framerate <= 0 {
		framerate = 60
	}
	ppu := cfg.Physics.Display.PixelsPerUnit
	if ppu <= 0 {
		ppu = 20
	}

	game := &Game{
		config:        cfg,
		body:          body,
		scheduler:     scheduler,
		physicsSystem: physicsSystem,
		inputSystem:   system.NewInputSystem(&ctrl.Controls),
		screenW:       cfg.Physics.Display.ScreenWidth,
		screenH:       cfg.Physics.Display.ScreenHeight,
		ppu:           ppu,
		dt:            1000.0 / float64(framerate),
		sink:          replay.Direct(scheduler),
		bridge:        opts.Bridge,
	}

	if opts.Replay != nil {
		game.replayer = replay.NewReplayer(*opts.Replay)
		game.replayer.Prepare(body)
		log.Printf("Replaying %d frames", game.replayer.TotalFrames())
	}
	scheduler.SetTarget(body)

	if opts.RecordFilename != "" && opts.Replay == nil {
		game.recorder = replay.NewRecorder(scheduler)
		game.sink = game.recorder
		log.Printf("Recording enabled: %s", opts.RecordFilename)
	}

	out := scheduler.Output()
	out.Subscribe(output.ListenerFuncs{
		Data: func(s output.Snapshot) {
			game.last = s
			game.received++
		},
		End: func() { game.ended = true },
	})
	if game.bridge != nil {
		out.Subscribe(game.bridge)
	}
	out.Resume()

	return game
}

// Update proceeds the game state
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if g.paused {
		return nil
	}

	var input system.InputState
	if g.replayer == nil {
		input = g.inputSystem.GetInput()
	}
	g.advance(input)
	return nil
}

// advance runs one frame: feed input, tick the controller, then host
// physics, then publish status.
func (g *Game) advance(input system.InputState) {
	if g.replayer != nil {
		if !g.replayer.Step(g.scheduler) {
			g.paused = true
			log.Printf("Replay finished at frame %d", g.replayer.CurrentFrame())
			return
		}
	} else {
		g.feed(input)
		g.tick()
	}

	dt := g.dt
	if g.replayer != nil {
		dt = g.replayer.LastDT()
	}
	g.physicsSystem.Update(g.body, dt)
	g.scheduler.EmitUpdate()
	if g.bridge != nil {
		g.bridge.Pump(g.scheduler.Output())
	}
}

func (g *Game) feed(input system.InputState) {
	if input.Reset {
		g.sink.Reset()
	}
	for _, cmd := range g.inputSystem.Commands(input) {
		g.sink.Write(cmd)
	}
	if d, ok := g.inputSystem.LookDelta(input); ok {
		g.sink.Rotate(d)
	}
	if g.bridge != nil {
		g.bridge.Drain(g.sink)
	}
}

func (g *Game) tick() {
	if g.recorder != nil {
		g.recorder.Tick(g.dt)
		return
	}
	g.scheduler.Tick(g.dt)
}

// saveRecording saves the current recording to file
func (g *Game) saveRecording(filename string) {
	if g.recorder == nil {
		return
	}

	if filename == "" {
		filename = replay.GenerateFilename(false)
	}

	if err := g.recorder.Save(filename); err != nil {
		log.Printf("Failed to save recording: %v", err)
	} else {
		log.Printf("Recording saved: %s (%d frames)", filename, g.recorder.FrameCount())
	}
}

// toScreen maps world x/z to screen pixels, origin at the screen centre,
// -Z pointing up.
func (g *Game) toScreen(x, z float64) (float64, float64) {
	return float64(g.screenW)/2 + x*g.ppu, float64(g.screenH)/2 + z*g.ppu
}

// Draw renders the game screen
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colorBG)

	g.drawGrid(screen)
	g.drawBounds(screen)
	g.drawTarget(screen)
	g.drawBody(screen)
	g.drawUI(screen)
}

func (g *Game) drawGrid(screen *ebiten.Image) {
	w, h := float64(g.screenW), float64(g.screenH)
	cx, cy := g.toScreen(0, 0)
	for x := math.Mod(cx, g.ppu); x < w; x += g.ppu {
		ebitenutil.DrawLine(screen, x, 0, x, h, colorGrid)
	}
	for y := math.Mod(cy, g.ppu); y < h; y += g.ppu {
		ebitenutil.DrawLine(screen, 0, y, w, y, colorGrid)
	}
}

func (g *Game) drawBounds(screen *ebiten.Image) {
	b := g.scheduler.MovementBounds()
	if b == nil || b.MinX == nil || b.MaxX == nil || b.MinZ == nil || b.MaxZ == nil {
		return
	}
	x0, y0 := g.toScreen(*b.MinX, *b.MinZ)
	x1, y1 := g.toScreen(*b.MaxX, *b.MaxZ)
	ebitenutil.DrawLine(screen, x0, y0, x1, y0, colorBounds)
	ebitenutil.DrawLine(screen, x1, y0, x1, y1, colorBounds)
	ebitenutil.DrawLine(screen, x1, y1, x0, y1, colorBounds)
	ebitenutil.DrawLine(screen, x0, y1, x0, y0, colorBounds)
}

func (g *Game) drawTarget(screen *ebiten.Image) {
	a := g.scheduler.Current()
	if a == nil {
		return
	}
	x, y := g.toScreen(a.EndPos.X(), a.EndPos.Z())
	ebitenutil.DrawRect(screen, x-3, y-3, 6, 6, colorTarget)
}

func (g *Game) drawBody(screen *ebiten.Image) {
	pos := g.body.Pos
	x, y := g.toScreen(pos.X(), pos.Z())

	// Shadow stays on the ground, the body grows with height
	size := g.ppu * 0.6
	ebitenutil.DrawRect(screen, x-size/2, y-size/2, size, size, colorShadow)

	lift := pos.Y() - g.config.Physics.Physics.GroundY
	bodySize := size * (1 + lift*0.3)
	c := colorBody
	if !g.body.OnGround {
		c = colorAir
	}
	ebitenutil.DrawRect(screen, x-bodySize/2, y-bodySize/2, bodySize, bodySize, c)

	// Heading: local forward is -Z
	fwd := entity.LocalToWorld(g.body.Yaw, 0, -1)
	hx, hy := g.toScreen(pos.X()+fwd.X(), pos.Z()+fwd.Z())
	ebitenutil.DrawLine(screen, x, y, hx, hy, colorHeading)
}

func (g *Game) drawUI(screen *ebiten.Image) {
	pos := g.body.Pos
	lines := fmt.Sprintf("pos: %.2f %.2f %.2f  yaw: %.1fdeg\nstate: %s  queue: %d  dropped: %d\nstatus: %s",
		pos.X(), pos.Y(), pos.Z(), g.body.Yaw*180/math.Pi,
		g.scheduler.State(), g.scheduler.QueueLen(), g.scheduler.Dropped(),
		g.last)
	if g.bridge != nil {
		lines += fmt.Sprintf("\nws clients: %d", g.bridge.Clients())
	}
	if g.ended {
		lines += "\nstream ended"
	}
	ebitenutil.DebugPrint(screen, lines)

	controls := "W/S/A/D: Step | Q/E: Turn | Space: Jump | LClick/MClick: Fire | RDrag: Look | R: Reset | ESC: Pause"
	if g.recorder != nil {
		controls += " | F5: Save"
	}
	ebitenutil.DebugPrintAt(screen, controls, 10, g.screenH-20)

	if g.paused {
		ebitenutil.DrawRect(screen, 0, 0, float64(g.screenW), float64(g.screenH), color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrintAt(screen, "PAUSED\n\nPress ESC to resume", g.screenW/2-50, g.screenH/2-20)
	}
}

// Layout returns the game's screen dimensions
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.screenW, g.screenH
}

// saveKeyGame wraps Game to handle F5 saves without the game knowing the
// target filename.
type saveKeyGame struct {
	*Game
	filename string
}

func (s saveKeyGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		s.saveRecording(s.filename)
	}
	return s.Game.Update()
}

func loadConfig(dir string) (*config.GameConfig, error) {
	if dir != "" {
		return config.NewLoader(dir).LoadAll()
	}
	fsys, err := fs.Sub(configFS, "configs")
	if err != nil {
		return nil, fmt.Errorf("failed to get config subfs: %w", err)
	}
	return config.NewFSLoader(fsys, "configs").LoadAll()
}

func main() {
	// Parse command line flags
	configFlag := flag.String("config", "", "Config directory (default: embedded configs)")
	recordFlag := flag.String("record", "", "Record commands to file (e.g., -record replay.json or replay.json.zst)")
	replayFlag := flag.String("replay", "", "Play back a recorded file")
	wsFlag := flag.String("ws", "", "Serve the websocket bridge on this address (e.g., -ws :8080)")
	flag.Parse()

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	opts := Options{
		RecordFilename: *recordFlag,
		Logger:         slog.Default(),
	}

	if *replayFlag != "" {
		data, err := replay.LoadReplay(*replayFlag)
		if err != nil {
			log.Fatalf("Failed to load replay: %v", err)
		}
		opts.Replay = data
	}

	if *wsFlag != "" {
		opts.Bridge = ws.NewBridge(ws.Config{Logger: opts.Logger})
		mux := http.NewServeMux()
		mux.Handle("/ws", opts.Bridge)
		srv := &http.Server{Addr: *wsFlag, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Websocket server stopped: %v", err)
			}
		}()
		defer func() { _ = srv.Close() }()
		log.Printf("Websocket bridge listening on %s/ws", *wsFlag)
	}

	// Create game
	game := NewGame(cfg, opts)

	// Set up ebiten
	ebiten.SetWindowSize(cfg.Physics.Display.ScreenWidth*cfg.Physics.Display.Scale,
		cfg.Physics.Display.ScreenHeight*cfg.Physics.Display.Scale)
	ebiten.SetWindowTitle("Stepper Demo")
	ebiten.SetTPS(cfg.Physics.Display.Framerate)

	// Run game
	if err := ebiten.RunGame(saveKeyGame{Game: game, filename: *recordFlag}); err != nil {
		log.Fatal(err)
	}

	game.saveRecording(*recordFlag)
	if opts.Bridge != nil {
		opts.Bridge.Close()
	}
}
