package domain

// BatchStatus is the overall outcome of a batch call
type BatchStatus string

const (
	BatchStatusSuccess        BatchStatus = "success"
	BatchStatusPartialSuccess BatchStatus = "partialSuccess"
)

// BatchResult aggregates per-item outcomes of one batch call. It is a
// transient value, never persisted.
type BatchResult struct {
	Status BatchStatus   `json:"status"`
	Data   []interface{} `json:"data"`
	Errors []string      `json:"errors,omitempty"`
}

// Merge folds another result into this one, downgrading the overall status
// to partial success when either side carries errors.
func (r *BatchResult) Merge(other *BatchResult) {
	r.Data = append(r.Data, other.Data...)
	r.Errors = append(r.Errors, other.Errors...)
	if len(r.Errors) > 0 {
		r.Status = BatchStatusPartialSuccess
	}
}
