package task

import "bricklink/cattree/internal/domain"

// SyncCategoriesTask scrapes one catalog tree and stores its categories.
type SyncCategoriesTask struct {
	CategoryType domain.CategoryType `json:"category_type"`
}

func (t *SyncCategoriesTask) TaskType() string {
	return TypeSyncCategories
}

func (t *SyncCategoriesTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
