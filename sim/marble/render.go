package marble

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"
)

// Render encodes a timed sequence as a conventional marble diagram, the
// inverse of Compile. Events sharing a frame are written as a group. Next
// values are mapped back through values when a symbol stands for them,
// otherwise their fmt representation must be a single non-reserved
// character. Error reasons are not encoded; every error renders as '#'.
//
// Frames must be non-decreasing multiples of FrameUnit and leave room for the
// previous group; anything else has no diagram and is reported as an error.
func Render(events []TimedEvent, values Values) (string, error) {
	symbols := reverse(values)

	var (
		b    strings.Builder
		slot int64
	)
	for i := 0; i < len(events); {
		frame := events[i].Frame
		if frame%FrameUnit != 0 {
			return "", fmt.Errorf("frame %d is not a multiple of %d", frame, FrameUnit)
		}
		at := frame / FrameUnit
		if at < slot {
			return "", fmt.Errorf("event %d at frame %d overlaps the previous frame", i, frame)
		}
		b.WriteString(strings.Repeat("-", int(at-slot)))

		j := i
		for j < len(events) && events[j].Frame == frame {
			j++
		}
		if j-i > 1 {
			b.WriteByte('(')
		}
		for _, e := range events[i:j] {
			sym, err := symbols.symbol(e.Notification)
			if err != nil {
				return "", fmt.Errorf("event %d at frame %d: %w", i, frame, err)
			}
			b.WriteString(sym)
		}
		if j-i > 1 {
			b.WriteByte(')')
		}
		slot = at + 1
		i = j
	}
	return b.String(), nil
}

type symbolTable []symbolEntry

type symbolEntry struct {
	symbol string
	value  any
}

// reverse inverts values with a stable preference for the smallest symbol.
func reverse(values Values) symbolTable {
	table := make(symbolTable, 0, len(values))
	for sym, v := range values {
		table = append(table, symbolEntry{symbol: sym, value: v})
	}
	sort.Slice(table, func(i, j int) bool { return table[i].symbol < table[j].symbol })
	return table
}

func (t symbolTable) symbol(n Notification) (string, error) {
	switch n.Kind {
	case KindDone:
		return "|", nil
	case KindError:
		return "#", nil
	}
	for _, e := range t {
		if reflect.DeepEqual(e.value, n.Value) {
			return e.symbol, nil
		}
	}
	sym := fmt.Sprint(n.Value)
	if utf8.RuneCountInString(sym) != 1 {
		return "", fmt.Errorf("value %q has no single-character symbol", sym)
	}
	if r, _ := utf8.DecodeRuneInString(sym); classify(r) != tokValue {
		return "", fmt.Errorf("value %q collides with a reserved diagram character", sym)
	}
	return sym, nil
}
