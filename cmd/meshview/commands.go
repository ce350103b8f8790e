package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/app"
	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/engine/camera"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/internal/meshio"
)

func newRootCmd() *cobra.Command {
	var demo bool

	cmd := &cobra.Command{
		Use:   "meshview [files...]",
		Short: "Interactive triangle mesh viewer",
		Long: `meshview - interactive triangle mesh viewer

Opens OBJ, STL, glTF and GLB files in a window with trackball rotation,
auto-framing, wireframe and transparency toggles, and a fix command that
merges the visible meshes into one cleaned mesh.

Controls:
  Left drag   - Rotate
  Scroll      - Zoom
  R / Home    - Reframe / reset view
  F           - Fix visible meshes
  W / T       - Toggle wireframe / transparency
  1-9         - Toggle visibility
  Backspace   - Remove last visible mesh
  S / F12     - Export OBJ / screenshot
  Esc         - Quit`,
		SilenceUsage: true,
	}
	flags := config.BindFlags(cmd.PersistentFlags())
	cmd.Flags().BoolVar(&demo, "demo", false, "Add procedural box, sphere and cylinder meshes")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := setup(flags)
		if err != nil {
			return err
		}
		defer logger.Sync()

		logger.Info("=== meshview ===", zap.Strings("files", args), zap.Bool("demo", demo))
		a, err := app.New(cfg, app.Options{Files: args, Demo: demo})
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Run(cmd.Context())
	}

	cmd.AddCommand(newInfoCmd(flags), newConvertCmd(flags))
	return cmd
}

// setup loads configuration and starts logging.
func setup(flags *config.Flags) (*config.Config, error) {
	cfg, err := config.Load(flags)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logger.Sugar.Debugf("config: %+v", cfg)
	return cfg, nil
}

func newInfoCmd(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Display mesh information",
		Long:  "Display vertex and triangle counts, the bounding box and the zoom auto-framing would apply.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(flags); err != nil {
				return err
			}
			m, err := meshio.LoadFile(args[0])
			if err != nil {
				return fmt.Errorf("load model: %w", err)
			}
			printInfo(cmd.OutOrStdout(), args[0], m)
			return nil
		},
	}
}

func printInfo(w io.Writer, path string, m meshio.Mesh) {
	ext := filepath.Ext(path)
	fmt.Fprintf(w, "File:       %s\n", filepath.Base(path))
	fmt.Fprintf(w, "Format:     %s\n", strings.ToUpper(strings.TrimPrefix(ext, ".")))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Vertices:   %d\n", m.VertexCount())
	fmt.Fprintf(w, "Triangles:  %d\n", m.TriangleCount())

	box := m.Bounds()
	if box.IsEmpty() {
		fmt.Fprintln(w, "Bounds:     empty")
		return
	}
	cam := camera.New()
	cam.Frame(box)
	size := box.Size()
	center := box.Center()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Bounds Min: (%.3f, %.3f, %.3f)\n", box.Min.X, box.Min.Y, box.Min.Z)
	fmt.Fprintf(w, "Bounds Max: (%.3f, %.3f, %.3f)\n", box.Max.X, box.Max.Y, box.Max.Z)
	fmt.Fprintf(w, "Dimensions: %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
	fmt.Fprintf(w, "Center:     (%.3f, %.3f, %.3f)\n", center.X, center.Y, center.Z)
	fmt.Fprintf(w, "Base zoom:  %.4f\n", cam.BaseZoom)
}

func newConvertCmd(flags *config.Flags) *cobra.Command {
	var (
		primitive string
		size      float64
	)

	cmd := &cobra.Command{
		Use:   "convert <in> <out.obj|out.glb>",
		Short: "Convert a mesh file to OBJ or GLB",
		Long: `Convert any supported mesh file to OBJ or binary glTF, chosen by the
output extension. With --primitive, the single argument is the output and
the mesh is a procedural solid instead of a file.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if primitive != "" {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := setup(flags); err != nil {
				return err
			}

			var (
				m   meshio.Mesh
				err error
			)
			out := args[len(args)-1]
			if primitive != "" {
				m, err = meshio.Primitive(primitive, size)
			} else {
				m, err = meshio.LoadFile(args[0])
			}
			if err != nil {
				return err
			}
			if err := meshio.SaveFile(out, m); err != nil {
				return err
			}
			logger.Info("converted",
				zap.String("out", out),
				zap.Int("vertices", m.VertexCount()),
				zap.Int("triangles", m.TriangleCount()))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d vertices, %d triangles)\n", out, m.VertexCount(), m.TriangleCount())
			return nil
		},
	}
	cmd.Flags().StringVar(&primitive, "primitive", "", "Generate a primitive instead of reading a file ("+strings.Join(meshio.Primitives, ", ")+")")
	cmd.Flags().Float64Var(&size, "size", 1, "Primitive size")
	return cmd
}
