package checkpoint

// ChainMap is a chain of lookup scopes with last-write-wins semantics: a key
// is resolved by walking the scopes in order and the first hit wins. Agent
// runtimes layer per-turn channel state this way.
type ChainMap struct {
	Scopes []map[string]interface{}
}

func NewChainMap(scopes ...map[string]interface{}) *ChainMap {
	return &ChainMap{Scopes: scopes}
}

// Get resolves key through the scope chain, front scope first.
func (c *ChainMap) Get(key string) (interface{}, bool) {
	for _, scope := range c.Scopes {
		if v, ok := scope[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Flatten collapses the chain into a single plain map, resolving each key
// once with the front scope winning.
func (c *ChainMap) Flatten() map[string]interface{} {
	out := make(map[string]interface{})
	for i := len(c.Scopes) - 1; i >= 0; i-- {
		for k, v := range c.Scopes[i] {
			out[k] = v
		}
	}
	return out
}
