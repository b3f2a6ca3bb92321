// Package checkpoint persists a renderer's accumulation buffer so a long
// render can be stopped and resumed later.
package checkpoint

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/klauspost/compress/zstd"
)

const (
	magic   = "PTCK"
	version = 1

	// maxPixels bounds the buffer a header may ask us to allocate
	maxPixels = 1 << 28
)

var (
	// ErrBadMagic reports a stream that is not a checkpoint
	ErrBadMagic = errors.New("not a checkpoint file")
	// ErrVersion reports a checkpoint written by an incompatible version
	ErrVersion = errors.New("unsupported checkpoint version")
	// ErrMismatch reports a checkpoint whose dimensions differ from the renderer's
	ErrMismatch = errors.New("checkpoint does not match renderer")
)

// Checkpoint is a snapshot of a progressive render
type Checkpoint struct {
	Width       int
	Height      int
	Samples     uint64
	Accumulated []core.Vec3 // Row-major, y=0 at the bottom
}

type header struct {
	Magic   [4]byte
	Version uint32
	Width   uint32
	Height  uint32
	Samples uint64
}

// Capture snapshots the renderer's current accumulation buffer
func Capture(r *renderer.Renderer) *Checkpoint {
	img := r.ImageConfig()
	return &Checkpoint{
		Width:       img.Width,
		Height:      img.Height,
		Samples:     r.Samples(),
		Accumulated: r.Accumulated(),
	}
}

// Apply loads the checkpoint into a renderer of the same size
func (c *Checkpoint) Apply(r *renderer.Renderer) error {
	img := r.ImageConfig()
	if img.Width != c.Width || img.Height != c.Height {
		return fmt.Errorf("%w: checkpoint is %dx%d, renderer is %dx%d",
			ErrMismatch, c.Width, c.Height, img.Width, img.Height)
	}
	return r.Restore(c.Accumulated, c.Samples)
}

// Save writes the checkpoint to w as a zstd-compressed stream
func Save(w io.Writer, c *Checkpoint) error {
	if len(c.Accumulated) != c.Width*c.Height {
		return fmt.Errorf("checkpoint has %d pixels for %dx%d", len(c.Accumulated), c.Width, c.Height)
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create encoder: %w", err)
	}

	bw := bufio.NewWriter(enc)
	h := header{
		Version: version,
		Width:   uint32(c.Width),
		Height:  uint32(c.Height),
		Samples: c.Samples,
	}
	copy(h.Magic[:], magic)

	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		enc.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, c.Accumulated); err != nil {
		enc.Close()
		return fmt.Errorf("failed to write accumulation buffer: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Load reads a checkpoint written by Save
func Load(r io.Reader) (*Checkpoint, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	defer dec.Close()

	var h header
	if err := binary.Read(dec, binary.LittleEndian, &h); err != nil {
		if errors.Is(err, zstd.ErrMagicMismatch) {
			return nil, ErrBadMagic
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if string(h.Magic[:]) != magic {
		return nil, ErrBadMagic
	}
	if h.Version != version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, h.Version)
	}

	pixels := uint64(h.Width) * uint64(h.Height)
	if pixels == 0 || pixels > maxPixels {
		return nil, fmt.Errorf("checkpoint size %dx%d is out of range", h.Width, h.Height)
	}

	c := &Checkpoint{
		Width:       int(h.Width),
		Height:      int(h.Height),
		Samples:     h.Samples,
		Accumulated: make([]core.Vec3, pixels),
	}
	if err := binary.Read(dec, binary.LittleEndian, c.Accumulated); err != nil {
		return nil, fmt.Errorf("failed to read accumulation buffer: %w", err)
	}
	return c, nil
}

// SaveFile writes the checkpoint to path, replacing any existing file
func SaveFile(path string, c *Checkpoint) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint: %w", err)
	}

	if err := Save(f, c); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LoadFile reads a checkpoint from path
func LoadFile(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint: %w", err)
	}
	defer f.Close()

	return Load(bufio.NewReader(f))
}
