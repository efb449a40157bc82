package tui

import (
	"sync"
	"testing"
	"time"

	"github.com/agbru/mcsim/internal/progress"
)

func TestTUIProgressReporter_DrainsChannel(t *testing.T) {
	reporter := &TUIProgressReporter{ref: &programRef{}}

	ch := make(chan progress.ProgressUpdate, 10)
	for _, v := range []float64{0.25, 0.5, 0.75, 1} {
		ch <- progress.ProgressUpdate{TaskIndex: 0, Value: v}
	}
	close(ch)

	var wg sync.WaitGroup
	wg.Add(1)
	go reporter.DisplayProgress(&wg, ch, 1, nil)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("DisplayProgress did not return after the channel was closed")
	}
	if len(ch) != 0 {
		t.Errorf("%d updates left in the channel", len(ch))
	}
}

func TestTUIProgressReporter_ZeroTasks(t *testing.T) {
	reporter := &TUIProgressReporter{ref: &programRef{}}

	ch := make(chan progress.ProgressUpdate, 5)
	ch <- progress.ProgressUpdate{TaskIndex: 0, Value: 0.5}
	close(ch)

	var wg sync.WaitGroup
	wg.Add(1)
	go reporter.DisplayProgress(&wg, ch, 0, nil)
	wg.Wait()
}

func TestProgramRef_Send_NilProgram(t *testing.T) {
	ref := &programRef{}
	ref.Send(ProgressMsg{Value: 0.5})
}
