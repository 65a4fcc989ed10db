package indexer

// IndexingContext collects the components of one analysis pass in
// registration order.
type IndexingContext struct {
	components []ComponentInfo
}

// NewIndexingContext creates an empty IndexingContext
func NewIndexingContext() *IndexingContext {
	return &IndexingContext{}
}

// AddComponent registers a component. Entries are never deduplicated.
func (c *IndexingContext) AddComponent(info ComponentInfo) {
	c.components = append(c.components, info)
}

// Components returns the registered components in registration order.
func (c *IndexingContext) Components() []ComponentInfo {
	return append([]ComponentInfo(nil), c.components...)
}
