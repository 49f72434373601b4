package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/taigrr/facet/pkg/models"
	"github.com/taigrr/facet/pkg/render"
	"github.com/taigrr/facet/pkg/scene"
)

// frameVerb matches the frame number verb in an output pattern, such as
// %d or %03d.
var frameVerb = regexp.MustCompile(`%[0-9]*d`)

type snapshotOptions struct {
	output    string
	turntable bool
}

func newSnapshotCmd(opts *globalOptions) *cobra.Command {
	snap := &snapshotOptions{}
	cmd := &cobra.Command{
		Use:   "snapshot [mesh]",
		Short: "Render a mesh to PNG or WebP",
		Long: "Render one frame, or with --turntable a full camera orbit, to image files.\n" +
			"Turntable frames are numbered: out.png becomes out-000.png, out-001.png, ...\n" +
			"An output containing a %d verb, such as frame%02d.webp, has it replaced by the frame number.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd, opts, snap, firstArg(args))
		},
	}

	f := cmd.Flags()
	f.StringVarP(&snap.output, "output", "o", "", "output file (.png or .webp)")
	f.BoolVar(&snap.turntable, "turntable", false, "render a full orbit of --frames images")
	f.IntVar(&opts.flags.Width, "width", 0, "image width in pixels")
	f.IntVar(&opts.flags.Height, "height", 0, "image height in pixels")
	f.IntVar(&opts.flags.Frames, "frames", 0, "number of turntable frames")
	f.IntVar(&opts.flags.Supersample, "supersample", 0, "render at N times the size and scale down")
	cmd.MarkFlagRequired("output")
	return cmd
}

func runSnapshot(cmd *cobra.Command, opts *globalOptions, snap *snapshotOptions, path string) error {
	ctx := cmd.Context()
	s, err := opts.settings()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, s.LogLevel)

	if _, err := render.FormatFromPath(snap.output); err != nil {
		return err
	}

	mesh, err := loadMesh(path, s.Normalize)
	if err != nil {
		return err
	}
	buffers := models.BuildBuffers(mesh)

	frames := []scene.FrameParameters{s.Initial}
	if snap.turntable {
		frames = scene.Turntable(s.Initial, s.Frames)
	}

	imgOpts := render.SnapshotOptions{
		Width:       s.Width,
		Height:      s.Height,
		Supersample: s.Supersample,
		Background:  &s.Background,
	}

	var bar *progressbar.ProgressBar
	if len(frames) > 1 {
		bar = progressbar.Default(int64(len(frames)), "rendering")
		defer bar.Close()
	}

	for i, p := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := render.Snapshot(p, buffers, imgOpts)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		out := framePath(snap.output, i, len(frames))
		if err := render.SaveImage(out, img); err != nil {
			return fmt.Errorf("save %s: %w", out, err)
		}
		logger.Debug("frame written", "path", out, "camera_angle", p.CameraAngle)
		if bar != nil {
			bar.Add(1)
		}
	}

	logger.Info("snapshot done", "frames", len(frames), "width", s.Width, "height", s.Height, "projection", s.Initial.Projection)
	return nil
}

// framePath names frame i of n. A single frame uses pattern as is. The
// first %d-style verb is replaced by i; any other % is literal.
func framePath(pattern string, i, n int) string {
	if n <= 1 {
		return pattern
	}
	if loc := frameVerb.FindStringIndex(pattern); loc != nil {
		return pattern[:loc[0]] + fmt.Sprintf(pattern[loc[0]:loc[1]], i) + pattern[loc[1]:]
	}
	ext := filepath.Ext(pattern)
	return fmt.Sprintf("%s-%03d%s", strings.TrimSuffix(pattern, ext), i, ext)
}
