package action

// Board holds items grouped into the three fixed status columns.
type Board struct {
	Pending    []Item `json:"pending"`
	InProgress []Item `json:"in_progress"`
	Completed  []Item `json:"completed"`
}

// GroupByStatus partitions items into the board columns. Every input item
// lands in exactly one bucket; unknown statuses fall back to pending so
// nothing is silently dropped.
func GroupByStatus(items []Item) Board {
	var b Board
	for _, it := range items {
		switch it.Status {
		case StatusInProgress:
			b.InProgress = append(b.InProgress, it)
		case StatusCompleted:
			b.Completed = append(b.Completed, it)
		default:
			b.Pending = append(b.Pending, it)
		}
	}
	return b
}
