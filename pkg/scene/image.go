package scene

// Image describes the render target. It is fixed for the life of a render.
type Image struct {
	Width    int `json:"width"`
	Height   int `json:"height"`
	Samples  int `json:"samples"`  // Passes the caller intends to run
	MaxDepth int `json:"maxDepth"` // Bounce budget per sample
}

// NewImage derives the height from the width and aspect ratio, truncating
func NewImage(aspectRatio float64, width, samples, maxDepth int) Image {
	height := int(float64(width) / aspectRatio)
	if height < 1 {
		height = 1
	}
	return Image{
		Width:    width,
		Height:   height,
		Samples:  samples,
		MaxDepth: maxDepth,
	}
}

// Pixels returns width*height
func (i Image) Pixels() int {
	return i.Width * i.Height
}
