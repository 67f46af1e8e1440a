package rnn

// growRows makes sure rows has an entry at index step, appending zeroed rows of
// the given width as needed. Existing rows are reused, never reallocated, so
// history from a longer earlier sequence is overwritten in place.
func growRows(rows [][]float32, step, width int) [][]float32 {
	for len(rows) <= step {
		rows = append(rows, make([]float32, width))
	}
	return rows
}

// growLayerRows is growRows for per-step snapshots holding one row per layer
func growLayerRows(rows [][][]float32, step int, widths []int) [][][]float32 {
	for len(rows) <= step {
		snap := make([][]float32, len(widths))
		for l, w := range widths {
			snap[l] = make([]float32, w)
		}
		rows = append(rows, snap)
	}
	return rows
}
