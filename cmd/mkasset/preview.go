package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sparkxr/xr/anim"
	"sparkxr/xr/asset"
	"sparkxr/xr/quarkgl"
	"sparkxr/xr/scene"
)

var previewCmd = &cobra.Command{
	Use:   "preview FILE",
	Short: "Render a model document to a PNG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		w, _ := cmd.Flags().GetInt("width")
		h, _ := cmd.Flags().GetInt("height")
		at, _ := cmd.Flags().GetFloat64("at")
		modeName, _ := cmd.Flags().GetString("mode")
		mode, ok := quarkgl.ParseRenderMode(modeName)
		if !ok {
			return fmt.Errorf("unknown render mode %q", modeName)
		}
		if out == "" {
			out = args[0] + ".png"
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		m, err := asset.Decode(filepath.Base(args[0]), data)
		if err != nil {
			return err
		}
		img, err := preview(m, w, h, at, mode)
		if err != nil {
			return err
		}

		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := png.Encode(f, img); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d)\n", out, w, h)
		return f.Close()
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringP("out", "o", "", "Output PNG (default FILE.png).")
	previewCmd.Flags().Int("width", 256, "Image width.")
	previewCmd.Flags().Int("height", 192, "Image height.")
	previewCmd.Flags().Float64("at", 0, "Animation time in seconds.")
	previewCmd.Flags().String("mode", "flat", "Rasterization: flat, wire or vertex.")
}

// preview renders m framed by a camera above and in front of it, with every
// clip advanced to at seconds.
func preview(m *asset.Model, w, h int, at float64, mode quarkgl.RenderMode) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid size %dx%d", w, h)
	}
	if len(m.Clips) > 0 && at > 0 {
		mx := anim.NewMixer(m.Root)
		for _, c := range m.Clips {
			mx.Play(c)
		}
		mx.Advance(at)
	}

	g := scene.NewGraph()
	g.Add(m.Root)
	draws := g.Collect(nil)

	center, radius := bounds(draws)
	cam := quarkgl.NewCamera()
	cam.Target = center
	cam.Position = center.Add(quarkgl.Normalize(quarkgl.V3(0, 0.5, 1)).Mul(radius * 2.5))
	cam.Near = radius * 0.05
	cam.Far = radius * 10

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	r := quarkgl.NewRenderer(w, h, true)
	r.SetRenderMode(mode)
	r.ClearColor = quarkgl.RGB(0x20, 0x20, 0x28)
	r.Render(quarkgl.ImageTarget{Img: img}, cam, quarkgl.DefaultLight(), draws)
	return img, nil
}

// bounds returns the center and radius of a sphere around every vertex.
func bounds(draws []quarkgl.Draw) (quarkgl.Vec3, quarkgl.Scalar) {
	var lo, hi quarkgl.Vec3
	first := true
	for _, d := range draws {
		for _, v := range d.Mesh.Vertices {
			p := quarkgl.Mat4MulV4(d.World, quarkgl.Vec4{X: v.Pos.X, Y: v.Pos.Y, Z: v.Pos.Z, W: 1})
			if first {
				lo = quarkgl.V3(p.X, p.Y, p.Z)
				hi = lo
				first = false
				continue
			}
			lo = quarkgl.V3(min(lo.X, p.X), min(lo.Y, p.Y), min(lo.Z, p.Z))
			hi = quarkgl.V3(max(hi.X, p.X), max(hi.Y, p.Y), max(hi.Z, p.Z))
		}
	}
	if first {
		return quarkgl.Vec3{}, 1
	}
	center := lo.Add(hi).Mul(0.5)
	radius := quarkgl.Len(hi.Sub(center))
	if radius < 1e-3 {
		radius = 1
	}
	return center, radius
}
