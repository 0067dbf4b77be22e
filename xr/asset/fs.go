package asset

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
)

//go:embed assets/*.yaml
var builtin embed.FS

// Builtin returns the models shipped with the binary.
func Builtin() fs.FS {
	sub, err := fs.Sub(builtin, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// FS loads model documents from a stack of file systems. The first layer
// holding a URI wins.
type FS struct {
	layers []fs.FS
}

func NewFS(layers ...fs.FS) *FS {
	var ls []fs.FS
	for _, l := range layers {
		if l != nil {
			ls = append(ls, l)
		}
	}
	return &FS{layers: ls}
}

func (l *FS) Load(ctx context.Context, uri string) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := path.Clean(uri)
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("load %s: %w", uri, ErrNotFound)
	}
	for _, layer := range l.layers {
		data, err := fs.ReadFile(layer, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", uri, err)
		}
		return Decode(uri, data)
	}
	return nil, fmt.Errorf("load %s: %w", uri, ErrNotFound)
}
