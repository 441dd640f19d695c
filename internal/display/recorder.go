package display

// Recorder keeps the current contents of each row for test assertions.
type Recorder struct {
	Rows   [Rows]string
	Writes int
}

// Line records the row text. Out-of-range rows are ignored.
func (r *Recorder) Line(row int, text string) {
	if row < 0 || row >= Rows {
		return
	}
	r.Rows[row] = text
	r.Writes++
}
