package models

// Segment is one timestamped line of a transcript. EndSeconds is derived
// from the following segment's start, not parsed; it is immutable once the
// parser has produced the full sequence.
type Segment struct {
	StartSeconds int
	EndSeconds   int
	Text         string
}

// Passage is a punctuation-bounded run of segments treated as one candidate
// clip span. Invariant: EndSeconds >= StartSeconds.
type Passage struct {
	Text         string
	StartSeconds int
	EndSeconds   int
}

func (p Passage) DurationSeconds() int {
	return p.EndSeconds - p.StartSeconds
}

// Overlaps reports whether two [start,end) spans intersect.
func (p Passage) Overlaps(o Passage) bool {
	return max(p.StartSeconds, o.StartSeconds) < min(p.EndSeconds, o.EndSeconds)
}
