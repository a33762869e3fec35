package heatmap

// downsampleInterval is the minimum spacing between emitted positions
// for one aircraft, in seconds.
const downsampleInterval = 60.0

// downsampler keeps one position per aircraft per minute. The gate is
// independent across aircraft and scoped to one file; it relies on the
// decoder delivering records in file order, which equals time order.
type downsampler struct {
	last map[string]float64
}

func newDownsampler() *downsampler {
	return &downsampler{last: make(map[string]float64)}
}

// admit reports whether a position for hex at time t passes the gate,
// and records t as the last emission time when it does.
func (d *downsampler) admit(hex string, t float64) bool {
	if prev, ok := d.last[hex]; ok && t-prev < downsampleInterval {
		return false
	}
	d.last[hex] = t
	return true
}
