package light

// EncodeRGB packs three 0-255 channels into the single integer the bulb
// expects for set_rgb. Channels must already be clamped.
func EncodeRGB(r, g, b int) int {
	return r*65536 + g*256 + b
}
