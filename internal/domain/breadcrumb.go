package domain

// BreadcrumbStep is a single category on the path to a node
type BreadcrumbStep struct {
	Name string `json:"name"` // Display name like "Books", "Informational Book", "Train"
	URL  string `json:"url"`  // Link to the category listing
	ID   string `json:"id"`   // catString (e.g., "332", "332.124")
}

// Breadcrumb is the root-to-node path of a category
type Breadcrumb struct {
	FullPath string           `json:"full_path"` // Names joined by the configured delimiter, e.g. "Books/Informational Book/Train"
	Steps    []BreadcrumbStep `json:"steps"`
}
