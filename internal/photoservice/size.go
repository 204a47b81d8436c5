package photoservice

// ClassifySize derives the layout hint from pixel dimensions: an aspect ratio
// below 0.8 is tall, above 1.4 is wide, anything in between (bounds included)
// is normal. The comparison is done on integers so the bounds are exact.
// Callers must reject non-positive dimensions first.
func ClassifySize(width, height int) SizeClass {
	w, h := int64(width), int64(height)

	switch {
	case 5*w < 4*h:
		return SizeTall
	case 5*w > 7*h:
		return SizeWide
	default:
		return SizeNormal
	}
}

func (s SizeClass) Valid() bool {
	switch s {
	case SizeNormal, SizeTall, SizeWide:
		return true
	}
	return false
}
