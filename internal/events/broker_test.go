package events

import "testing"

func TestBrokerPublishSubscribe(t *testing.T) {
	broker := NewBroker()
	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	broker.Publish(Event{AnalysisID: "a-1", DiseaseType: "fungal"})

	select {
	case evt := <-ch:
		if evt.AnalysisID != "a-1" {
			t.Errorf("analysis id = %q", evt.AnalysisID)
		}
	default:
		t.Fatal("expected buffered event")
	}
}

func TestBrokerDropsWhenSubscriberSlow(t *testing.T) {
	broker := NewBroker()
	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	// Fill the buffer and then some; Publish must never block.
	for i := 0; i < 20; i++ {
		broker.Publish(Event{AnalysisID: "a"})
	}

	if got := len(ch); got != cap(ch) {
		t.Errorf("buffered = %d, want %d", got, cap(ch))
	}
}

func TestBrokerUnsubscribeClosesChannel(t *testing.T) {
	broker := NewBroker()
	ch := broker.Subscribe()
	broker.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("expected closed channel")
	}

	// Publishing after unsubscribe must not panic.
	broker.Publish(Event{AnalysisID: "a"})
}
