package demo_test

import (
	"context"
	"testing"
	"time"

	"github.com/hostkit/statedemo/internal/demo"
	"github.com/hostkit/statedemo/internal/models"
)

// Timer-driven tests use a short debounce window and wide receive
// deadlines so they stay stable on slow machines.
const testDelay = 40 * time.Millisecond

func waitForSave(t *testing.T, ch <-chan models.Envelope, within time.Duration) models.Envelope {
	t.Helper()
	select {
	case env := <-ch:
		return env
	case <-time.After(within):
		t.Fatal("no auto-save arrived in time")
		return models.Envelope{}
	}
}

func assertNoSave(t *testing.T, ch <-chan models.Envelope, within time.Duration) {
	t.Helper()
	select {
	case env := <-ch:
		t.Fatalf("unexpected save arrived: %+v", env)
	case <-time.After(within):
	}
}

func TestAutosave_FiresAfterQuietWindow(t *testing.T) {
	svc := &fakeService{saved: make(chan models.Envelope, 4)}
	comp := demo.New(svc, nil, demo.WithAutosaveDelay(testDelay))
	t.Cleanup(comp.Close)

	input := "typed something"
	comp.Update(models.DemoDataUpdate{UserInput: &input})

	env := waitForSave(t, svc.saved, time.Second)
	if env.DemoData == nil || env.DemoData.UserInput != input {
		t.Errorf("auto-saved envelope = %+v, want the edited dataset", env)
	}
	if env.SaveCount != 1 {
		t.Errorf("auto-saved SaveCount = %d, want 1", env.SaveCount)
	}

	// One edit, one save.
	assertNoSave(t, svc.saved, 5*testDelay)
}

func TestAutosave_LastEditWins(t *testing.T) {
	svc := &fakeService{saved: make(chan models.Envelope, 4)}
	comp := demo.New(svc, nil, demo.WithAutosaveDelay(3*testDelay))
	t.Cleanup(comp.Close)

	for _, input := range []string{"first", "second", "final"} {
		in := input
		comp.Update(models.DemoDataUpdate{UserInput: &in})
		time.Sleep(testDelay) // within the window, so each edit re-arms
	}

	env := waitForSave(t, svc.saved, time.Second)
	if env.DemoData == nil || env.DemoData.UserInput != "final" {
		t.Errorf("auto-saved input = %+v, want the last edit", env.DemoData)
	}
	assertNoSave(t, svc.saved, 6*testDelay)
}

func TestAutosave_DisabledPreference_NeverFires(t *testing.T) {
	svc := &fakeService{saved: make(chan models.Envelope, 4)}
	comp := demo.New(svc, nil, demo.WithAutosaveDelay(testDelay))
	t.Cleanup(comp.Close)

	off := false
	input := "quiet edit"
	comp.Update(models.DemoDataUpdate{
		UserInput:   &input,
		Preferences: &models.PreferencesUpdate{AutoSave: &off},
	})

	assertNoSave(t, svc.saved, 5*testDelay)
}

func TestAutosave_ToggleOffReleasesPendingSave(t *testing.T) {
	svc := &fakeService{saved: make(chan models.Envelope, 4)}
	comp := demo.New(svc, nil, demo.WithAutosaveDelay(3*testDelay))
	t.Cleanup(comp.Close)

	input := "armed"
	comp.Update(models.DemoDataUpdate{UserInput: &input})

	off := false
	comp.Update(models.DemoDataUpdate{Preferences: &models.PreferencesUpdate{AutoSave: &off}})

	assertNoSave(t, svc.saved, 8*testDelay)
}

func TestAutosave_DeferredWhileBusy(t *testing.T) {
	svc := &fakeService{
		saved:     make(chan models.Envelope, 4),
		saveDelay: 4 * testDelay, // manual save blocks past the debounce window
	}
	comp := demo.New(svc, nil, demo.WithAutosaveDelay(testDelay))
	t.Cleanup(comp.Close)

	manualDone := make(chan error, 1)
	go func() { manualDone <- comp.Save(context.Background()) }()

	// Edit while the manual save is in flight; the timer fires into a
	// busy component and must re-arm instead of dropping the save.
	time.Sleep(testDelay / 2)
	input := "during the save"
	comp.Update(models.DemoDataUpdate{UserInput: &input})

	first := waitForSave(t, svc.saved, time.Second)
	if first.SaveCount != 1 {
		t.Errorf("first envelope SaveCount = %d, want the manual save", first.SaveCount)
	}
	if err := <-manualDone; err != nil {
		t.Fatalf("manual save failed: %v", err)
	}

	second := waitForSave(t, svc.saved, time.Second)
	if second.DemoData == nil || second.DemoData.UserInput != input {
		t.Errorf("deferred auto-save envelope = %+v, want the edit", second.DemoData)
	}
	if second.SaveCount != 2 {
		t.Errorf("deferred auto-save SaveCount = %d, want 2", second.SaveCount)
	}
}

func TestAutosave_CloseReleasesTimer(t *testing.T) {
	svc := &fakeService{saved: make(chan models.Envelope, 4)}
	comp := demo.New(svc, nil, demo.WithAutosaveDelay(testDelay))

	input := "doomed edit"
	comp.Update(models.DemoDataUpdate{UserInput: &input})
	comp.Close()

	assertNoSave(t, svc.saved, 5*testDelay)
}

func TestAutosave_ClearReleasesPendingSave(t *testing.T) {
	svc := &fakeService{saved: make(chan models.Envelope, 4)}
	comp := demo.New(svc, nil, demo.WithAutosaveDelay(3*testDelay))
	t.Cleanup(comp.Close)

	input := "pre-clear edit"
	comp.Update(models.DemoDataUpdate{UserInput: &input})

	if err := comp.Clear(context.Background()); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	assertNoSave(t, svc.saved, 8*testDelay)
}
