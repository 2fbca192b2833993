package renderer

import (
	"image"

	"github.com/lightloom/go-ray-engine/pkg/core"
)

// Tile represents a rectangular sub-region of the viewport processed as one
// scheduling unit
type Tile struct {
	ID     int
	Bounds image.Rectangle
}

// Area returns the number of pixels in the tile
func (t Tile) Area() int {
	return t.Bounds.Dx() * t.Bounds.Dy()
}

// TileSizeFor picks the tile edge length for a viewport. Small viewports
// get fine-grained tiles for load balancing; large ones get bigger tiles to
// amortize per-task overhead.
func TileSizeFor(width, height int) int {
	switch pixels := width * height; {
	case pixels < 250_000:
		return 32
	case pixels < 1_000_000:
		return 64
	default:
		return 128
	}
}

// NewTileGrid partitions a viewport into row-major tiles of the given edge
// length. Tiles in the last row and column are clipped to the viewport
// boundary, so the grid covers every pixel exactly once.
func NewTileGrid(width, height, tileSize int) []Tile {
	tilesX := core.CeilDiv(width, tileSize)
	tilesY := core.CeilDiv(height, tileSize)

	tiles := make([]Tile, 0, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0 := tx * tileSize
			y0 := ty * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)
			tiles = append(tiles, Tile{
				ID:     len(tiles),
				Bounds: image.Rect(x0, y0, x1, y1),
			})
		}
	}
	return tiles
}
