// facet - terminal viewer for flat-shaded meshes with perspective,
// orthographic and oblique projections.
//
// Usage:
//
//	facet [mesh.json|mesh.glb]      view a mesh (the built-in cube if none)
//	facet snapshot mesh.json -o out.png
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/facet/pkg/config"
	"github.com/taigrr/facet/pkg/models"
)

// version is set at build time.
var version = "dev"

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configPath string
	flags      config.Flags
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	view := &viewOptions{}

	root := &cobra.Command{
		Use:   "facet [mesh]",
		Short: "View meshes in the terminal",
		Long: "facet draws a mesh (.json, .glb or .gltf) in the terminal with perspective,\n" +
			"orthographic or oblique projection. Without a mesh it shows a cube.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd.Context(), opts, view, firstArg(args))
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (.yaml or .toml); defaults to the user config dir")
	pf.IntVar(&opts.flags.FPS, "fps", 0, "target frames per second")
	pf.StringVar(&opts.flags.Background, "bg", "", "background color as R,G,B")
	pf.StringVar(&opts.flags.Projection, "projection", "", "initial projection: perspective, orthographic or oblique")
	pf.StringVar(&opts.flags.LogLevel, "log-level", "", "log level: debug, info, warn or error")

	view.bind(root)
	root.AddCommand(newViewCmd(opts), newSnapshotCmd(opts))
	return root
}

// settings loads the config file and merges the flags over it.
func (o *globalOptions) settings() (config.Settings, error) {
	var (
		c   *config.Config
		err error
	)
	if o.configPath != "" {
		c, err = config.Load(o.configPath)
	} else {
		c, err = config.LoadDefault()
	}
	if err != nil {
		return config.Settings{}, err
	}
	return c.Resolve(o.flags)
}

// newLogger returns a text logger writing to w at level.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadMesh loads path, or returns the built-in cube for an empty path, and
// rescales it so its largest dimension is normalize.
func loadMesh(path string, normalize float64) (*models.MeshData, error) {
	m := models.Cube()
	if path != "" {
		var err error
		if m, err = models.Load(path); err != nil {
			return nil, fmt.Errorf("load mesh: %w", err)
		}
	}
	if normalize > 0 {
		m = m.Normalized(normalize)
	}
	return m, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
