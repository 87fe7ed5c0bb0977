package signalz

import "fmt"

// SelectorDef describes a named view into the state.
type SelectorDef struct {
	// Name identifies the selector. It must not be ReservedName.
	Name string

	// Path is the dot-delimited chain the selector reads and writes.
	Path string

	// Equal overrides the Signal comparator for bindings made through the
	// selector. Optional.
	Equal Equal
}

// Accessor is the get/set pair installed for a selector.
type Accessor struct {
	sig  *Signal
	name string
	path string
	eq   Equal
}

// Name returns the selector name.
func (a *Accessor) Name() string { return a.name }

// Path returns the selector path.
func (a *Accessor) Path() string { return a.path }

// Bind binds a read of the selector path. The selector comparator wins over
// the Signal comparator.
func (a *Accessor) Bind(render RenderFunc) *Binding {
	return a.sig.bind(Path(a.path), resolveEqual(a.eq, a.sig.equal), render)
}

// Get returns the current value at the selector path without binding.
func (a *Accessor) Get() any {
	return a.sig.Get(a.path)
}

// Set writes value at the selector path and notifies every observer.
// If value is a func(any) any it is applied to the current value at the
// path instead.
func (a *Accessor) Set(value any) {
	if fn, ok := value.(func(any) any); ok {
		a.Update(fn)
		return
	}
	a.Update(func(any) any { return value })
}

// Update writes fn(current value at the path) at the selector path and
// notifies every observer.
func (a *Accessor) Update(fn func(current any) any) {
	a.sig.write(func(state any) any {
		return setPath(state, a.path, fn)
	})
}

// selectorRegistry maps names to accessors, remembering installation order.
type selectorRegistry struct {
	byName map[string]*Accessor
	order  []string
}

func (r *selectorRegistry) put(a *Accessor) {
	if r.byName == nil {
		r.byName = make(map[string]*Accessor)
	}
	if _, exists := r.byName[a.name]; !exists {
		r.order = append(r.order, a.name)
	}
	r.byName[a.name] = a
}

func (r *selectorRegistry) delete(name string) bool {
	if _, ok := r.byName[name]; !ok {
		return false
	}
	delete(r.byName, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func checkName(name string) error {
	if name == ReservedName {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	return nil
}

// AddSelectors installs accessors for defs in order. A later definition of
// an existing name replaces its accessor. If any name is reserved the call
// fails and nothing is installed. Calling it with no defs is a no-op.
func (s *Signal) AddSelectors(defs ...SelectorDef) error {
	if len(defs) == 0 {
		return nil
	}
	for _, d := range defs {
		if err := checkName(d.Name); err != nil {
			return err
		}
	}

	s.mu.Lock()
	for _, d := range defs {
		s.selectors.put(&Accessor{sig: s, name: d.Name, path: d.Path, eq: d.Equal})
	}
	installed := len(s.selectors.order)
	s.mu.Unlock()

	for _, d := range defs {
		s.emit(SelectorAdded, KeySelector.Field(d.Name), KeyPath.Field(d.Path))
		s.metrics.OnSelectorChange(SelectorOpAdd, installed)
	}
	return nil
}

// DeleteSelector removes the named accessor. Bindings already made through
// it keep working. Deleting a name that is not installed does nothing.
func (s *Signal) DeleteSelector(name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	s.mu.Lock()
	removed := s.selectors.delete(name)
	installed := len(s.selectors.order)
	s.mu.Unlock()

	if removed {
		s.emit(SelectorDeleted, KeySelector.Field(name))
		s.metrics.OnSelectorChange(SelectorOpDelete, installed)
	}
	return nil
}

// Selectors returns the installed selector names in installation order.
func (s *Signal) Selectors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.selectors.order))
	copy(out, s.selectors.order)
	return out
}

// Selector returns the accessor installed under name.
func (s *Signal) Selector(name string) (*Accessor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.selectors.byName[name]
	return a, ok
}

// Select binds a read through the named selector.
func (s *Signal) Select(name string, render RenderFunc) (*Binding, error) {
	a, ok := s.Selector(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSelector, name)
	}
	return a.Bind(render), nil
}

// SetSelector writes through the named selector; see Accessor.Set.
func (s *Signal) SetSelector(name string, data any) error {
	a, ok := s.Selector(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSelector, name)
	}
	a.Set(data)
	return nil
}
