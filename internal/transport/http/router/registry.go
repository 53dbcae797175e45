package router

import (
	"sort"

	"campus-leave/internal/transport/http/ez"
)

// Module mounts a set of routes.
type Module interface{ Mount(ez.EZ) }

// prioritizer lets a module control mount order (lower first, default 100).
type prioritizer interface{ Priority() int }

type Registry struct {
	mods []Module
}

func (r *Registry) Register(mods ...Module) { r.mods = append(r.mods, mods...) }

func (r *Registry) MountAll(e ez.EZ) {
	mods := append([]Module(nil), r.mods...)
	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.Mount(e)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
