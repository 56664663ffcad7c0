package lidar

// RangeSource is the high-level interface the control loop reads range
// data from. Scan returns the horizontal sweep for the current tick, or
// nil when the sensor produced nothing; a nil scan means "no obstacle
// information", never an error. The returned scan is owned by the source
// and only valid until the next call.
type RangeSource interface {
	Scan() Scan
}

// Scan is one horizontal sweep of distance samples, ordered left to
// right across the sensor's field of view.
type Scan []float64
