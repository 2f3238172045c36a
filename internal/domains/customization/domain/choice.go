package domain

// ChoiceKind enumerates the three states of a "keep current or pick new" toggle.
type ChoiceKind int

const (
	ChoiceUnset ChoiceKind = iota
	ChoiceKeepCurrent
	ChoicePickNew
)

func (k ChoiceKind) String() string {
	switch k {
	case ChoiceKeepCurrent:
		return "keep-current"
	case ChoicePickNew:
		return "pick-new"
	default:
		return "unset"
	}
}

// Choice is either unset, "keep the current value", or a newly picked value.
// Keeping and picking at the same time cannot be represented.
type Choice[T any] struct {
	kind  ChoiceKind
	value T
}

// Unset returns an empty choice.
func Unset[T any]() Choice[T] {
	return Choice[T]{}
}

// KeepCurrent returns a choice that retains the image's existing value.
func KeepCurrent[T any]() Choice[T] {
	return Choice[T]{kind: ChoiceKeepCurrent}
}

// PickNew returns a choice carrying a replacement value.
func PickNew[T any](value T) Choice[T] {
	return Choice[T]{kind: ChoicePickNew, value: value}
}

// Kind reports which state the choice is in.
func (c Choice[T]) Kind() ChoiceKind {
	return c.kind
}

// IsSet is true for keep-current and pick-new.
func (c Choice[T]) IsSet() bool {
	return c.kind != ChoiceUnset
}

// KeepsCurrent is true when the existing value is retained.
func (c Choice[T]) KeepsCurrent() bool {
	return c.kind == ChoiceKeepCurrent
}

// Picked returns the new value when one was picked.
func (c Choice[T]) Picked() (T, bool) {
	if c.kind != ChoicePickNew {
		var zero T
		return zero, false
	}
	return c.value, true
}

// Changed is true only for a pick-new choice.
func (c Choice[T]) Changed() bool {
	return c.kind == ChoicePickNew
}
