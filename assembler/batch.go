package assembler

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// AssembleFiles assembles independent scripts concurrently. Programs are
// returned in the order of paths. The first read failure cancels the rest.
func (asm *Assembler) AssembleFiles(ctx context.Context, paths []string) ([]*Program, error) {
	progs := make([]*Program, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			prog, err := asm.AssembleFile(path)
			if err != nil {
				return err
			}
			progs[i] = prog
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return progs, nil
}
