package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sparkxr/xr/asset"
	"sparkxr/xr/scene"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Decode model documents and print a summary of each",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, p := range args {
			if err := checkFile(cmd.OutOrStdout(), p); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", p, err)
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d documents invalid", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// Summary counts what a model would add to a scene.
type Summary struct {
	Nodes     int
	Meshes    int
	Triangles int
	Clips     int
}

func summarize(m *asset.Model) Summary {
	s := Summary{Clips: len(m.Clips)}
	m.Root.Walk(func(n *scene.Node) bool {
		s.Nodes++
		if n.Mesh != nil {
			s.Meshes++
			s.Triangles += len(n.Mesh.Indices) / 3
		}
		return true
	})
	return s
}

func checkFile(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	m, err := asset.Decode(filepath.Base(path), data)
	if err != nil {
		return err
	}
	s := summarize(m)
	fmt.Fprintf(w, "%s: ok nodes=%d meshes=%d triangles=%d clips=%d\n", path, s.Nodes, s.Meshes, s.Triangles, s.Clips)
	return nil
}
