package renderer

import (
	"image"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Tile represents a rectangular region of the image to be rendered.
// Tiles never overlap, so a worker may write a tile's pixels without locking.
type Tile struct {
	ID      int             // Unique tile identifier
	Bounds  image.Rectangle // Pixel bounds (x0,y0,x1,y1), y grows up the image
	Sampler core.Sampler    // Tile-owned random stream; only one worker touches it per pass
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, &Tile{ID: tileID, Bounds: image.Rect(x0, y0, x1, y1)})
			tileID++
		}
	}

	return tiles
}

// renderTile takes one jittered sample for every pixel in the tile and adds
// it to the accumulation buffer
func (r *Renderer) renderTile(tile *Tile) int {
	sampler := tile.Sampler
	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		row := y * r.width
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			jitter := sampler.Get2D()
			u := (float64(x) + jitter.X) / r.uDenom
			v := (float64(y) + jitter.Y) / r.vDenom

			ray := r.camera.GetRay(u, v)
			color := r.scene.RayColor(ray, r.image.MaxDepth, sampler)
			r.accumulated[row+x] = r.accumulated[row+x].Add(color)
		}
	}
	return tile.Bounds.Dx() * tile.Bounds.Dy()
}
