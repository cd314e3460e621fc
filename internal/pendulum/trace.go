package pendulum

// TraceCapacity is the number of tip positions a System keeps.
const TraceCapacity = 200

// Trace is a fixed-capacity FIFO of points. Once full, each Push overwrites
// the oldest point. Push never allocates.
type Trace struct {
	buf  []Vec2
	head int
	size int
}

// NewTrace returns an empty trace holding at most capacity points.
// A non-positive capacity is treated as one.
func NewTrace(capacity int) *Trace {
	if capacity < 1 {
		capacity = 1
	}
	return &Trace{buf: make([]Vec2, capacity)}
}

func (t *Trace) Push(p Vec2) {
	t.buf[t.head] = p
	t.head = (t.head + 1) % len(t.buf)
	if t.size < len(t.buf) {
		t.size++
	}
}

func (t *Trace) Len() int { return t.size }
func (t *Trace) Cap() int { return len(t.buf) }

// At returns the i-th point, counting from the oldest.
func (t *Trace) At(i int) Vec2 {
	if i < 0 || i >= t.size {
		panic("pendulum: trace index out of range")
	}
	n := len(t.buf)
	return t.buf[(t.head-t.size+i+n)%n]
}

// First returns the oldest point.
func (t *Trace) First() (Vec2, bool) {
	if t.size == 0 {
		return Vec2{}, false
	}
	return t.At(0), true
}

// Last returns the newest point.
func (t *Trace) Last() (Vec2, bool) {
	if t.size == 0 {
		return Vec2{}, false
	}
	return t.At(t.size - 1), true
}

// AppendTo appends the points, oldest first, to dst and returns the result.
func (t *Trace) AppendTo(dst []Vec2) []Vec2 {
	n := len(t.buf)
	start := (t.head - t.size + n) % n
	for i := 0; i < t.size; i++ {
		dst = append(dst, t.buf[(start+i)%n])
	}
	return dst
}

// Points returns a copy of the points, oldest first.
func (t *Trace) Points() []Vec2 {
	return t.AppendTo(make([]Vec2, 0, t.size))
}

func (t *Trace) Reset() {
	t.head = 0
	t.size = 0
}
