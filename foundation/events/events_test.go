package events_test

import (
	"testing"

	"github.com/ardanlabs/powledger/foundation/events"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Events(t *testing.T) {
	evts := events.New()

	id1, ch1 := evts.Subscribe()
	_, ch2 := evts.Subscribe()

	if evts.Count() != 2 {
		t.Fatalf("\t%s\tShould have two subscribers, got %d.", failed, evts.Count())
	}

	evts.Send("block mined")

	for i, ch := range []<-chan string{ch1, ch2} {
		if msg := <-ch; msg != "block mined" {
			t.Fatalf("\t%s\tShould deliver the event to subscriber %d, got %q.", failed, i, msg)
		}
	}
	t.Logf("\t%s\tShould deliver the event to every subscriber.", success)

	if !evts.Unsubscribe(id1) {
		t.Fatalf("\t%s\tShould unsubscribe a known subscriber.", failed)
	}
	if _, open := <-ch1; open {
		t.Fatalf("\t%s\tShould close the channel of an unsubscribed subscriber.", failed)
	}
	if evts.Unsubscribe(id1) {
		t.Fatalf("\t%s\tShould report an unknown subscriber.", failed)
	}
	t.Logf("\t%s\tShould unsubscribe and close the channel.", success)

	for i := 0; i < 500; i++ {
		evts.Send("flood")
	}
	t.Logf("\t%s\tShould not block when a subscriber is slow.", success)

	evts.Shutdown()
	for range ch2 {
	}
	if evts.Count() != 0 {
		t.Fatalf("\t%s\tShould have no subscribers after shutdown.", failed)
	}

	_, late := evts.Subscribe()
	if _, open := <-late; open {
		t.Fatalf("\t%s\tShould hand out a closed channel after shutdown.", failed)
	}
	evts.Send("ignored")
	t.Logf("\t%s\tShould close every channel on shutdown.", success)
}
