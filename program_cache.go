package vuet

import "sync"

// ProgramCache holds compiled rule programs.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MemoryProgramCache is a ProgramCache backed by a guarded map. Entries are
// never evicted.
type MemoryProgramCache struct {
	mu       sync.RWMutex
	programs map[string]any
}

// NewMemoryProgramCache returns an empty cache.
func NewMemoryProgramCache() *MemoryProgramCache {
	return &MemoryProgramCache{programs: map[string]any{}}
}

func (c *MemoryProgramCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.programs[key]
	return value, ok
}

func (c *MemoryProgramCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.programs == nil {
		c.programs = map[string]any{}
	}
	c.programs[key] = value
}

// Len returns the number of cached programs.
func (c *MemoryProgramCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}

// cachedProgram returns the program compiled for expression by engine,
// consulting cache first when useCache is set. Keys are prefixed with the
// engine name so evaluators may share one cache.
func cachedProgram[P any](cache ProgramCache, engine, expression string, useCache bool, compile func() (P, error)) (P, error) {
	useCache = useCache && cache != nil
	key := engine + ":" + expression
	if useCache {
		if cached, ok := cache.Get(key); ok {
			if program, ok := cached.(P); ok {
				return program, nil
			}
		}
	}
	program, err := compile()
	if err != nil {
		return program, err
	}
	if useCache {
		cache.Set(key, program)
	}
	return program, nil
}
