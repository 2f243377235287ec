package geometry

// MinScale keeps the display scale positive while a container reports a
// zero width mid-layout.
const MinScale = 1e-3

// ComputeScale fits nativeWidth into availableWidth without upscaling.
// Callers debounce resize events; this stays a pure function.
func ComputeScale(nativeWidth, availableWidth float64) float64 {
	if nativeWidth <= 0 {
		return 1
	}
	scale := availableWidth / nativeWidth
	if scale > 1 {
		return 1
	}
	if scale < MinScale {
		return MinScale
	}
	return scale
}

func DisplayToNative(x, y, scale float64) (float64, float64) {
	if scale <= 0 {
		scale = MinScale
	}
	return x / scale, y / scale
}

func NativeToDisplay(x, y, scale float64) (float64, float64) {
	return x * scale, y * scale
}

func Clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
