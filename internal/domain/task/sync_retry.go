package task

import "bricklink/cattree/internal/domain"

type SyncRetryTask struct {
	CategoryType domain.CategoryType `json:"category_type"` // S, P, M, G, B
	RetryCount   int                 `json:"retry_count"`   // Attempts made so far
	Error        string              `json:"error"`         // Error message from the last failure
}

func (t *SyncRetryTask) TaskType() string {
	return TypeSyncRetry
}

func (t *SyncRetryTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
