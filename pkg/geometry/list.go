package geometry

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// List is an aggregate of surfaces scanned linearly on every query.
// Intersection cost is O(n) in the number of children; there is no
// acceleration structure.
type List struct {
	Surfaces []Surface
}

// NewList creates an aggregate from the given surfaces
func NewList(surfaces ...Surface) *List {
	return &List{Surfaces: surfaces}
}

// Add appends a surface to the aggregate
func (l *List) Add(s Surface) {
	l.Surfaces = append(l.Surfaces, s)
}

// Len returns the number of direct children
func (l *List) Len() int {
	return len(l.Surfaces)
}

// Hit returns the nearest child hit, shrinking tMax as closer hits are found.
// The result depends only on t, not on child order.
func (l *List) Hit(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool) {
	var closest material.HitRecord
	hitAnything := false
	closestSoFar := tMax

	for _, s := range l.Surfaces {
		if rec, ok := s.Hit(ray, tMin, closestSoFar); ok {
			hitAnything = true
			closestSoFar = rec.T
			closest = rec
		}
	}

	return closest, hitAnything
}

func (*List) surface() {}

// Walk calls fn for every sphere reachable from s, descending into nested lists
func Walk(s Surface, fn func(*Sphere)) {
	switch v := s.(type) {
	case *Sphere:
		fn(v)
	case *List:
		for _, child := range v.Surfaces {
			Walk(child, fn)
		}
	}
}
