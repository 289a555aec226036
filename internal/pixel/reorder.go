package pixel

// ToRGB drops alpha and writes a new 3-channel RGB image. The source must be
// a 4-channel image; a 4n-byte input always yields 3n bytes. An RGB image
// is returned as is.
func ToRGB(src *Image) *Image {
	if src.Layout == RGB {
		return src
	}
	n := len(src.Pix) / 4
	out := make([]byte, n*3)

	// r, g, b are the offsets of each color inside a source group.
	r, g, b := 2, 1, 0
	if src.Layout == RGBA {
		r, g, b = 0, 1, 2
	}
	for i, j := 0, 0; i+4 <= len(src.Pix); i, j = i+4, j+3 {
		px := src.Pix[i : i+4 : i+4]
		out[j] = px[r]
		out[j+1] = px[g]
		out[j+2] = px[b]
	}
	return &Image{Pix: out, Width: src.Width, Height: src.Height, Layout: RGB}
}
