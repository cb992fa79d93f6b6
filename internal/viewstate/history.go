package viewstate

// History is an in-process back/forward stack of encoded view queries,
// giving the terminal surfaces browser-style back and forward navigation.
type History struct {
	entries []string
	pos     int
}

// NewHistory starts a history at the given view.
func NewHistory(initial string) *History {
	return &History{entries: []string{initial}}
}

// Push records a new view, dropping any forward entries. Pushing the
// current view again is a no-op.
func (h *History) Push(q string) {
	if h.entries[h.pos] == q {
		return
	}
	h.entries = append(h.entries[:h.pos+1], q)
	h.pos++
}

// Back steps to the previous view. ok is false at the oldest entry.
func (h *History) Back() (string, bool) {
	if h.pos == 0 {
		return "", false
	}
	h.pos--
	return h.entries[h.pos], true
}

// Forward steps to the next view. ok is false at the newest entry.
func (h *History) Forward() (string, bool) {
	if h.pos >= len(h.entries)-1 {
		return "", false
	}
	h.pos++
	return h.entries[h.pos], true
}

// Current returns the view the history is positioned on.
func (h *History) Current() string {
	return h.entries[h.pos]
}
