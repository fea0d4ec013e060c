package studio

import (
	"fmt"
	"testing"
)

func TestBrokerDeliversAndClosesOnTerminal(t *testing.T) {
	b := newBroker()
	ch, cancel := b.subscribe("j")
	defer cancel()

	b.publish(Event{JobID: "j", Stage: StageRender, Index: 1, Total: 2})
	b.publish(Event{JobID: "other", Stage: StageRender})
	b.publish(Event{JobID: "j", Stage: StageDone})

	var got []Stage
	for ev := range ch {
		got = append(got, ev.Stage)
	}
	if len(got) != 2 || got[0] != StageRender || got[1] != StageDone {
		t.Errorf("Events = %v", got)
	}
}

func TestBrokerReplaysFinishedJob(t *testing.T) {
	b := newBroker()
	b.publish(Event{JobID: "j", Stage: StageFailed, Message: "boom"})

	ch, cancel := b.subscribe("j")
	defer cancel()

	ev, ok := <-ch
	if !ok || ev.Stage != StageFailed {
		t.Fatalf("Expected replayed failure, got %+v (ok=%v)", ev, ok)
	}
	if _, ok := <-ch; ok {
		t.Error("Channel should be closed after terminal replay")
	}
}

func TestBrokerCancelIsIdempotent(t *testing.T) {
	b := newBroker()
	ch, cancel := b.subscribe("j")
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Error("Expected closed channel after cancel")
	}
	b.publish(Event{JobID: "j", Stage: StageDone})
}

func TestBrokerBoundsFinishedJobs(t *testing.T) {
	b := newBroker()
	for i := 0; i < maxFinished+10; i++ {
		id := fmt.Sprintf("job-%d", i)
		b.publish(Event{JobID: id, Stage: StageQueued})
		b.publish(Event{JobID: id, Stage: StageDone})
	}

	if len(b.last) != maxFinished || len(b.done) != maxFinished {
		t.Fatalf("Retained %d events (%d finished), want %d", len(b.last), len(b.done), maxFinished)
	}
	if _, ok := b.last["job-0"]; ok {
		t.Error("Oldest finished job should have been pruned")
	}
	if _, ok := b.last[fmt.Sprintf("job-%d", maxFinished+9)]; !ok {
		t.Error("Newest finished job should be kept")
	}
}

func TestBrokerForget(t *testing.T) {
	b := newBroker()
	b.publish(Event{JobID: "j", Stage: StageDone})
	b.forget("j")

	if len(b.last) != 0 || len(b.done) != 0 {
		t.Errorf("Expected no retained state, got last=%v done=%v", b.last, b.done)
	}
}
