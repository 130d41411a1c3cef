package try

// something have method `Fatal`.
//
// For example in standard libraries: *testing.T, log.Logger
type Fataler interface {
	Fatal(...any)
}

// Either is a pair of (T, error) from a call, to be unpacked in one expression.
//
//	pool := try.To(pgxpool.Connect(ctx, uri)).OrFatal(t)
type Either[T any] interface {
	// Get returns the pair as it is.
	Get() (T, error)

	// OrFatal returns the value, or calls ftl.Fatal(err).
	//
	// If ftl has "Helper()" method (like *testing.T), also that is called before `Fatal`.
	OrFatal(ftl Fataler) T

	// OrDefault returns the value, or d on error.
	OrDefault(d T) T
}

func To[T any](value T, err error) Either[T] {
	if err == nil {
		return ok[T]{value}
	}
	return ng[T]{err}
}

type ok[T any] struct {
	value T
}

type ng[T any] struct {
	err error
}

func (o ok[T]) Get() (T, error) { return o.value, nil }
func (o ok[T]) OrDefault(T) T { return o.value }
func (o ok[T]) OrFatal(Fataler) T { return o.value }
func (n ng[T]) Get() (T, error) { return *new(T), n.err }
func (n ng[T]) OrDefault(d T) T { return d }

func (n ng[T]) OrFatal(ftl Fataler) T {
	if h, isHelper := ftl.(interface{ Helper() }); isHelper {
		h.Helper()
	}
	ftl.Fatal(n.err)
	return *new(T)
}
