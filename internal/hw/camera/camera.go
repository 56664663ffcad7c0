package camera

// FrameSource is the high-level interface the control loop reads images
// from, regardless of where they come from (simulator host, synthetic
// world, video pipeline, etc.).
//
// Frame returns the image for the current tick, or nil when no image is
// available; the caller must treat a nil frame as "skip this tick".
// The returned frame is owned by the source and only valid until the
// next call.
type FrameSource interface {
	Frame() *Frame
}

// Frame is a camera image in the BGRA byte layout used by simulator
// camera buffers: 4 bytes per pixel, row-major.
type Frame struct {
	Width  int
	Height int
	Pixels []byte
}

// NewFrame allocates a black frame of the given dimensions.
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pixels: make([]byte, 4*width*height),
	}
}

func (f *Frame) Red(x, y int) int {
	return int(f.Pixels[4*(y*f.Width+x)+2])
}

func (f *Frame) Green(x, y int) int {
	return int(f.Pixels[4*(y*f.Width+x)+1])
}

func (f *Frame) Blue(x, y int) int {
	return int(f.Pixels[4*(y*f.Width+x)])
}

// SetRGB writes one pixel. Alpha is forced opaque.
func (f *Frame) SetRGB(x, y, r, g, b int) {
	i := 4 * (y*f.Width + x)
	f.Pixels[i] = byte(b)
	f.Pixels[i+1] = byte(g)
	f.Pixels[i+2] = byte(r)
	f.Pixels[i+3] = 0xff
}

// Fill paints the whole frame with one color.
func (f *Frame) Fill(r, g, b int) {
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			f.SetRGB(x, y, r, g, b)
		}
	}
}
