package moodle

// PluginCollection is an ordered set of plugins keyed by component.
type PluginCollection struct {
	plugins []Plugin
	index   map[string]int
}

// NewPluginCollection creates a collection holding plugins in the given order.
func NewPluginCollection(plugins ...Plugin) (*PluginCollection, error) {
	c := &PluginCollection{index: make(map[string]int)}
	for _, p := range plugins {
		if err := c.Add(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add appends a plugin.
// Returns DuplicateComponentError if the component is already present.
func (c *PluginCollection) Add(p Plugin) error {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, exists := c.index[p.Component()]; exists {
		return &DuplicateComponentError{
			Component: p.Component(),
			Existing:  c.plugins[i].Directory(),
			Duplicate: p.Directory(),
		}
	}
	c.index[p.Component()] = len(c.plugins)
	c.plugins = append(c.plugins, p)
	return nil
}

// Len returns the number of plugins.
func (c *PluginCollection) Len() int {
	return len(c.plugins)
}

// All returns the plugins in insertion order.
func (c *PluginCollection) All() []Plugin {
	return append([]Plugin(nil), c.plugins...)
}

// Get returns the plugin with the given component.
func (c *PluginCollection) Get(component string) (Plugin, bool) {
	i, ok := c.index[component]
	if !ok {
		return Plugin{}, false
	}
	return c.plugins[i], true
}

// Has reports whether the component is present.
func (c *PluginCollection) Has(component string) bool {
	_, ok := c.index[component]
	return ok
}

// SortByDependencies returns a new collection where every plugin follows the
// plugins it depends on. See SortByDependencies.
func (c *PluginCollection) SortByDependencies() (*PluginCollection, error) {
	sorted, err := SortByDependencies(c)
	if err != nil {
		return nil, err
	}
	return NewPluginCollection(sorted...)
}

// SortByDependencies orders the plugins of c so that each one appears after all of
// its dependencies present in c. Dependencies on components outside c are ignored.
// Among plugins that are ready at the same time, insertion order is kept.
// Returns CircularDependencyError if the present plugins form a cycle.
func SortByDependencies(c *PluginCollection) ([]Plugin, error) {
	n := len(c.plugins)

	// Kahn's algorithm, always taking the earliest inserted ready plugin.
	inDegree := make([]int, n)
	dependents := make([][]int, n)
	for i, p := range c.plugins {
		seen := make(map[int]bool)
		for _, dep := range p.dependencies {
			j, ok := c.index[dep]
			if !ok || seen[j] {
				continue
			}
			seen[j] = true
			inDegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	done := make([]bool, n)
	sorted := make([]Plugin, 0, n)
	for len(sorted) < n {
		next := -1
		for i := 0; i < n; i++ {
			if !done[i] && inDegree[i] == 0 {
				next = i
				break
			}
		}
		if next == -1 {
			break
		}

		done[next] = true
		sorted = append(sorted, c.plugins[next])
		for _, d := range dependents[next] {
			inDegree[d]--
		}
	}

	if len(sorted) != n {
		remaining := make([]string, 0, n-len(sorted))
		for i, p := range c.plugins {
			if !done[i] {
				remaining = append(remaining, p.Component())
			}
		}
		return nil, &CircularDependencyError{Components: remaining}
	}

	return sorted, nil
}
