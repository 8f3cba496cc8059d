package icons

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Chain layers several libraries; the first one that knows a name wins.
//
// Earlier libraries shadow later ones, so an imported pack can override a
// built-in icon without modifying it.
type Chain []Library

// Load implements Source.
func (c Chain) Load(ctx context.Context, name string) (Asset, error) {
	for _, lib := range c {
		if lib == nil {
			continue
		}
		asset, err := lib.Load(ctx, name)
		if err == nil {
			return asset, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Asset{}, err
		}
	}
	return Asset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// List implements Lister. Shadowed definitions are omitted.
func (c Chain) List(ctx context.Context) ([]Definition, error) {
	seen := make(map[string]struct{})
	var result []Definition
	for _, lib := range c {
		if lib == nil {
			continue
		}
		defs, err := lib.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, def := range defs {
			if _, ok := seen[def.Name]; ok {
				continue
			}
			seen[def.Name] = struct{}{}
			result = append(result, def)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
