package marble

type token int

const (
	tokIdle token = iota
	tokSubscribe
	tokUnsubscribe
	tokGroupOpen
	tokGroupClose
	tokDone
	tokError
	tokValue
)

// tokenTable classifies every reserved diagram character. Anything missing
// is a value.
var tokenTable = map[rune]token{
	'-': tokIdle,
	' ': tokIdle,
	'^': tokSubscribe,
	'!': tokUnsubscribe,
	'(': tokGroupOpen,
	')': tokGroupClose,
	'|': tokDone,
	'#': tokError,
}

func classify(c rune) token {
	if tok, ok := tokenTable[c]; ok {
		return tok
	}
	return tokValue
}

// cursor is the time-and-grouping machinery shared by both compilers.
type cursor struct {
	diagram  string
	time     int64
	grouped  bool
	groupPos int
}

// step advances time by one unit unless inside a group.
func (c *cursor) step() {
	if !c.grouped {
		c.time += FrameUnit
	}
}

func (c *cursor) open(pos int) error {
	if c.grouped {
		return malformedGroupError(c.diagram, pos, '(', "nested groups are not supported")
	}
	c.grouped = true
	c.groupPos = pos
	return nil
}

func (c *cursor) close(pos int) error {
	if !c.grouped {
		return malformedGroupError(c.diagram, pos, ')', "group closed without being opened")
	}
	c.grouped = false
	c.time += FrameUnit
	return nil
}

func (c *cursor) finish() error {
	if c.grouped {
		return malformedGroupError(c.diagram, c.groupPos, '(', "group opened but never closed")
	}
	return nil
}

// compilerState accumulates events while folding over the diagram tokens.
type compilerState struct {
	cursor
	events     []TimedEvent
	values     Values
	errorValue any
}

func (s *compilerState) emit(n Notification) {
	s.events = append(s.events, TimedEvent{Frame: s.time, Notification: n})
	s.step()
}

func (s *compilerState) apply(pos int, c rune) error {
	switch classify(c) {
	case tokIdle:
		s.step()
	case tokSubscribe:
		s.events = s.events[:0]
		s.time = 0
		s.step()
	case tokUnsubscribe:
		return unsubscriptionMarkerError(s.diagram, pos)
	case tokGroupOpen:
		return s.open(pos)
	case tokGroupClose:
		return s.close(pos)
	case tokDone:
		s.emit(Done())
	case tokError:
		s.emit(Error(s.errorValue))
	case tokValue:
		s.emit(Next(s.values.lookup(c)))
	}
	return nil
}

// Compile turns a conventional marble diagram into its timed notifications.
// Symbols are substituted through values; '#' carries errorValue, or
// DefaultErrorValue when errorValue is nil. Events before '^' are discarded
// and frames restart from zero there. The result is ordered by input
// position, so events of one group keep their relative order.
func Compile(diagram string, values Values, errorValue any) ([]TimedEvent, error) {
	s, err := compile(diagram, values, errorValue)
	if err != nil {
		return nil, err
	}
	return s.events, nil
}

func compile(diagram string, values Values, errorValue any) (*compilerState, error) {
	if errorValue == nil {
		errorValue = DefaultErrorValue
	}
	s := &compilerState{
		cursor:     cursor{diagram: diagram},
		events:     make([]TimedEvent, 0, len(diagram)),
		values:     values,
		errorValue: errorValue,
	}
	for pos, c := range []rune(diagram) {
		if err := s.apply(pos, c); err != nil {
			return nil, err
		}
	}
	if err := s.finish(); err != nil {
		return nil, err
	}
	return s, nil
}

// MustCompile is like Compile but panics on a malformed diagram. Intended for
// test fixtures.
func MustCompile(diagram string, values Values, errorValue any) []TimedEvent {
	events, err := Compile(diagram, values, errorValue)
	if err != nil {
		panic(err)
	}
	return events
}

// Duration returns the frame of the first '|' or '#' in diagram, measured from
// its '^' when present. A diagram with no terminal marker lasts its whole
// length.
func Duration(diagram string) (int64, error) {
	s, err := compile(diagram, nil, nil)
	if err != nil {
		return 0, err
	}
	for _, e := range s.events {
		if e.Notification.IsTerminal() {
			return e.Frame, nil
		}
	}
	return s.time, nil
}
