package trace

// Summary aggregates lifecycle statistics from a Recorder.
type Summary struct {
	Activations   int
	Deactivations int
	Open          int            // activations still without a deactivation
	Sources       map[string]int // source name → number of activations
}

// Summarize computes aggregate statistics from a Recorder.
// Safe for nil or empty recorders (returns zero-value fields).
func Summarize(r *Recorder) *Summary {
	summary := &Summary{
		Sources: make(map[string]int),
	}
	if r == nil {
		return summary
	}

	live := make(map[uint64]bool)
	for _, rec := range r.Records {
		switch rec.Kind {
		case Activated:
			summary.Activations++
			summary.Sources[rec.Source]++
			live[rec.Entity] = true
		case Deactivated:
			summary.Deactivations++
			delete(live, rec.Entity)
		}
	}
	summary.Open = len(live)

	return summary
}
