package shortcut

import "time"

// EntryStats is a snapshot of one entry's runtime counters.
type EntryStats struct {
	Key           string    `json:"key"`
	Context       string    `json:"context"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	TriggerCount  int       `json:"triggerCount"`
	LastTriggered time.Time `json:"lastTriggered"`
	Errors        []string  `json:"errors,omitempty"`
}

// Summary aggregates dispatcher usage.
type Summary struct {
	Entries       int          `json:"entries"`
	Contexts      int          `json:"contexts"`
	TotalTriggers int          `json:"totalTriggers"`
	MostTriggered *EntryStats  `json:"mostTriggered,omitempty"`
	PerEntry      []EntryStats `json:"perEntry"`
}

// Stats returns usage statistics: per-entry trigger counts and the
// most-triggered entry.
func (d *Dispatcher) Stats() Summary {
	d.mu.Lock()
	defer d.mu.Unlock()

	sum := Summary{
		Entries:  len(d.entries),
		Contexts: len(d.contexts),
	}
	var top *EntryStats
	for _, e := range d.entries {
		st := EntryStats{
			Key:           e.Key,
			Context:       e.Context,
			Description:   e.Description,
			Category:      e.Category,
			TriggerCount:  e.triggerCount,
			LastTriggered: e.lastTriggered,
		}
		for _, ae := range e.errorLog {
			st.Errors = append(st.Errors, ae.At.Format(time.RFC3339)+": "+ae.Err)
		}
		sum.TotalTriggers += e.triggerCount
		sum.PerEntry = append(sum.PerEntry, st)
		if st.TriggerCount > 0 && (top == nil || st.TriggerCount > top.TriggerCount) {
			cp := st
			top = &cp
		}
	}
	sum.MostTriggered = top
	return sum
}
