package marble

// CompileWindow parses a subscription diagram made only of idle characters,
// groups, one optional '^' and one optional '!'. Each marker records the
// cursor position at which it appears. Ordering between the two markers is
// not checked.
func CompileWindow(diagram string) (SubscriptionWindow, error) {
	var (
		w   SubscriptionWindow
		cur = cursor{diagram: diagram}
	)
	mark := func(slot **int64, pos int, c rune) error {
		if *slot != nil {
			return duplicateMarkerError(diagram, pos, c)
		}
		frame := cur.time
		*slot = &frame
		cur.step()
		return nil
	}

	for pos, c := range []rune(diagram) {
		var err error
		switch classify(c) {
		case tokIdle:
			cur.step()
		case tokGroupOpen:
			err = cur.open(pos)
		case tokGroupClose:
			err = cur.close(pos)
		case tokSubscribe:
			err = mark(&w.Subscribed, pos, c)
		case tokUnsubscribe:
			err = mark(&w.Unsubscribed, pos, c)
		default:
			err = invalidCharacterError(diagram, pos, c)
		}
		if err != nil {
			return SubscriptionWindow{}, err
		}
	}
	if err := cur.finish(); err != nil {
		return SubscriptionWindow{}, err
	}
	return w, nil
}

// MustCompileWindow is like CompileWindow but panics on a malformed diagram.
func MustCompileWindow(diagram string) SubscriptionWindow {
	w, err := CompileWindow(diagram)
	if err != nil {
		panic(err)
	}
	return w
}
