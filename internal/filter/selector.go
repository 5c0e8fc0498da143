package filter

// Selector is a controlled choice over an ordered sequence of string options.
// The first option is the default. An empty option list is a representable
// state: the selector simply has no value.
type Selector struct {
	options  []string
	value    string
	hasValue bool
	onChange func(string)
}

// NewSelector builds a selector over options. onChange may be nil; it is never
// invoked during construction, only when Choose actually changes the value.
func NewSelector(options []string, onChange func(string)) *Selector {
	s := &Selector{
		options:  append([]string(nil), options...),
		onChange: onChange,
	}
	if len(s.options) > 0 {
		s.value = s.options[0]
		s.hasValue = true
	}
	return s
}

// Value returns the current choice. ok is false when the option list is empty.
func (s *Selector) Value() (value string, ok bool) {
	return s.value, s.hasValue
}

// Options returns the option sequence in order.
func (s *Selector) Options() []string {
	return append([]string(nil), s.options...)
}

// Choose sets the current value. Unknown options are rejected. The change
// callback fires exactly once per actual change and never for a re-selection
// of the current value.
func (s *Selector) Choose(v string) bool {
	if !s.contains(v) {
		return false
	}
	if s.hasValue && s.value == v {
		return true
	}
	s.value = v
	s.hasValue = true
	if s.onChange != nil {
		s.onChange(v)
	}
	return true
}

// Next advances to the following option, stopping at the last one.
func (s *Selector) Next() {
	s.step(1)
}

// Prev moves to the preceding option, stopping at the first one.
func (s *Selector) Prev() {
	s.step(-1)
}

func (s *Selector) step(delta int) {
	if len(s.options) == 0 {
		return
	}
	idx := s.index()
	next := idx + delta
	if next < 0 || next >= len(s.options) {
		return
	}
	s.Choose(s.options[next])
}

// SetOptions replaces the option sequence and resets the choice to the new
// first option (or to the empty state when the new sequence is empty), even
// when the held value appears in the new sequence. The reset does not fire
// the change callback: option replacement is a host decision, not a user
// interaction.
func (s *Selector) SetOptions(options []string) {
	s.options = append([]string(nil), options...)
	if len(s.options) > 0 {
		s.value = s.options[0]
		s.hasValue = true
		return
	}
	s.value = ""
	s.hasValue = false
}

func (s *Selector) index() int {
	for i, o := range s.options {
		if o == s.value {
			return i
		}
	}
	return 0
}

func (s *Selector) contains(v string) bool {
	for _, o := range s.options {
		if o == v {
			return true
		}
	}
	return false
}
