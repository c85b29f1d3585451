package task

import "bricklink/cattree/internal/domain"

// BuildTreeTask rebuilds the cached tree snapshot of one category type.
type BuildTreeTask struct {
	CategoryType domain.CategoryType `json:"category_type"`
}

func (t *BuildTreeTask) TaskType() string {
	return TypeBuildTree
}

func (t *BuildTreeTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
