package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"
	"github.com/taigrr/facet/pkg/config"
	"github.com/taigrr/facet/pkg/models"
	"github.com/taigrr/facet/pkg/render"
	"github.com/taigrr/facet/pkg/scene"
)

// viewOptions are the flags of the interactive viewer.
type viewOptions struct {
	logFile string
	noWatch bool
}

func (v *viewOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&v.logFile, "log-file", "", "write logs to this file (the terminal is in use)")
	cmd.Flags().BoolVar(&v.noWatch, "no-watch", false, "do not reload the mesh when the file changes")
}

func newViewCmd(opts *globalOptions) *cobra.Command {
	view := &viewOptions{}
	cmd := &cobra.Command{
		Use:   "view [mesh]",
		Short: "Open the interactive viewer",
		Long: `Open the interactive viewer.

Controls:
  1 / 2 / 3      perspective / orthographic / oblique
  p              cycle projection
  left / right   orbit the camera
  + / - / wheel  zoom
  w/s a/d q/e    rotate (angle Y, angle X, angle Z)
  mouse drag     rotate
  h/l k/j u/o    move along X, Y, Z
  [ / ]          scale down / up
  f              toggle face colors
  r              reset
  esc / ctrl+c   quit`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.Context(), opts, view, firstArg(args))
		},
	}
	view.bind(cmd)
	return cmd
}

func runView(ctx context.Context, opts *globalOptions, view *viewOptions, path string) error {
	opts.flags.NoWatch = opts.flags.NoWatch || view.noWatch
	s, err := opts.settings()
	if err != nil {
		return err
	}

	logOut := io.Discard
	if view.logFile != "" {
		f, err := os.OpenFile(view.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(logOut, s.LogLevel)

	mesh, err := loadMesh(path, s.Normalize)
	if err != nil {
		return err
	}
	logger.Info("mesh loaded", "path", path, "vertices", mesh.NumVertices(), "triangles", mesh.TriangleCount())

	v := newViewer(s, models.NewStore(mesh))
	v.name = "cube"
	if path != "" {
		v.name = filepath.Base(path)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.Watch && path != "" {
		w, err := models.NewWatcher(path, v.store)
		if err != nil {
			return err
		}
		defer w.Close()
		w.Logger = logger
		w.Load = func(p string) (*models.MeshData, error) { return loadMesh(p, s.Normalize) }
		go w.Run(ctx)
	}

	return v.run(ctx, cancel, s, logger)
}

// viewer holds the interactive state shared by the event handler and the
// render loop.
type viewer struct {
	name     string
	store    *models.Store
	controls *scene.Controls

	dragging bool
	lastX    int
	lastY    int
}

func newViewer(s config.Settings, store *models.Store) *viewer {
	return &viewer{
		store:    store,
		controls: scene.NewControls(s.Initial, s.FPS),
	}
}

func (v *viewer) run(ctx context.Context, cancel context.CancelFunc, s config.Settings, logger *slog.Logger) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Enable any-event mouse tracking with SGR extended coordinates
	fmt.Fprint(os.Stdout, "\x1b[?1003h\x1b[?1006h")
	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}()

	rast := render.NewRasterizer(render.NewFramebuffer(render.FramebufferSize(width, height)))
	presenter := render.NewTerminalPresenter(term, term.Display)
	presenter.OnResize = func(cols, rows int) {
		term.Erase()
		term.Resize(cols, rows)
	}
	presenter.Status = v.status

	loop := render.NewLoop(rast, v.controls, v.store, presenter, render.LoopOptions{
		FPS:        s.FPS,
		ClearColor: &s.Background,
		Logger:     logger,
	})

	go func() {
		for ev := range term.Events() {
			if ev, ok := ev.(uv.WindowSizeEvent); ok {
				loop.RequestResize(render.FramebufferSize(ev.Width, ev.Height))
				continue
			}
			if v.handleEvent(ev) {
				cancel()
				return
			}
		}
	}()

	err = loop.Run(ctx)
	stats := loop.Stats()
	logger.Info("viewer closed", "drawn", stats.Drawn, "skipped", stats.Skipped)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// status is the line drawn over the bottom row.
func (v *viewer) status() string {
	p := v.controls.Snapshot()
	shading := "shaded"
	if !v.store.IsShaded() {
		shading = "unshaded"
	}
	return fmt.Sprintf(" %s | %s | zoom %.0f | angle %.0f | %s ", v.name, p.Projection, p.CameraZoom, p.CameraAngle, shading)
}
