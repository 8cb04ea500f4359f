package toga

import (
	"testing"

	"github.com/go-mosf/mosf/pkg/backend"
	"github.com/go-mosf/mosf/pkg/backend/headless"
	"github.com/go-mosf/mosf/pkg/errors"
	"github.com/go-mosf/mosf/pkg/event"
	"github.com/go-mosf/mosf/pkg/spec"
)

func newTestAdapter(t *testing.T) (*Adapter, *headless.Driver) {
	t.Helper()
	drv := headless.New()
	drv.Install(BackendID)
	t.Cleanup(backend.ResetDriversForTest)
	return New(), drv
}

func TestMaterializeWithoutDriverIsUnavailable(t *testing.T) {
	backend.ResetDriversForTest()
	a := New()

	if a.Available() {
		t.Error("adapter must be unavailable without a driver")
	}
	s := spec.MustBuild(spec.KindButton, "b", nil)
	_, err := a.Materialize(s)
	if !errors.Is(err, errors.KindBackendUnavailable) {
		t.Errorf("error kind = %v, want KindBackendUnavailable", errors.KindOf(err))
	}
}

func TestInitFailureIsUnavailable(t *testing.T) {
	drv := headless.New()
	drv.InitErr = errors.New("headless.Init", errors.KindBackendUnavailable, "no display")
	drv.Install(BackendID)
	t.Cleanup(backend.ResetDriversForTest)

	if New().Available() {
		t.Error("adapter must be unavailable when toolkit init fails")
	}
}

func TestMaterializeDestroyLeavesNoHandles(t *testing.T) {
	a, drv := newTestAdapter(t)

	for _, kind := range spec.Kinds() {
		s := spec.MustBuild(kind, "w-"+string(kind), nil)
		h, err := a.Materialize(s)
		if err != nil {
			t.Fatalf("Materialize(%s): %v", kind, err)
		}
		if a.HandleCount() != 1 {
			t.Fatalf("HandleCount after materialize = %d, want 1", a.HandleCount())
		}
		if err := a.Destroy(h); err != nil {
			t.Fatalf("Destroy(%s): %v", kind, err)
		}
		if a.HandleCount() != 0 {
			t.Fatalf("HandleCount after destroy = %d, want 0", a.HandleCount())
		}
	}
	if drv.LiveCount() != 0 {
		t.Errorf("driver still holds %d native objects", drv.LiveCount())
	}
}

func TestDestroyTwiceFails(t *testing.T) {
	a, _ := newTestAdapter(t)
	h, err := a.Materialize(spec.MustBuild(spec.KindLabel, "l", nil))
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Destroy(h); err != nil {
		t.Fatal(err)
	}
	err = a.Destroy(h)
	if !errors.Is(err, errors.KindAlreadyDestroyed) {
		t.Errorf("second Destroy kind = %v, want KindAlreadyDestroyed", errors.KindOf(err))
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	a, drv := newTestAdapter(t)
	s := spec.MustBuild(spec.KindButton, "save", spec.Props{spec.PropText: "Save"})
	h, err := a.Materialize(s)
	if err != nil {
		t.Fatal(err)
	}

	next := s.Update(spec.Props{spec.PropText: "Saving...", spec.PropEnabled: false})
	if err := a.Update(h, next); err != nil {
		t.Fatal(err)
	}
	obj, _ := drv.ObjectByWidgetID("save")
	after1 := obj.Props["text"]

	if err := a.Update(h, next); err != nil {
		t.Fatal(err)
	}
	obj, _ = drv.ObjectByWidgetID("save")
	if obj.Props["text"] != after1 {
		t.Errorf("second identical update changed state: %v != %v", obj.Props["text"], after1)
	}
	if obj.Props["enabled"] != false {
		t.Errorf("enabled = %v, want false", obj.Props["enabled"])
	}
}

func TestPropTranslation(t *testing.T) {
	a, drv := newTestAdapter(t)
	s := spec.MustBuild(spec.KindImage, "pic", spec.Props{spec.PropSource: "bee.png"})
	if _, err := a.Materialize(s); err != nil {
		t.Fatal(err)
	}
	obj, ok := drv.ObjectByWidgetID("pic")
	if !ok {
		t.Fatal("no native object for pic")
	}
	if obj.Class != "toga.ImageView" {
		t.Errorf("class = %q, want toga.ImageView", obj.Class)
	}
	if obj.Props["image"] != "bee.png" {
		t.Errorf("source must translate to image, got props %v", obj.Props)
	}
}

func TestBindEventDeliversNeutralPayload(t *testing.T) {
	a, drv := newTestAdapter(t)
	h, err := a.Materialize(spec.MustBuild(spec.KindButton, "go", nil))
	if err != nil {
		t.Fatal(err)
	}

	var got []event.Payload
	binding, err := a.BindEvent(h, event.OnPress, "", func(p event.Payload) {
		got = append(got, p)
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := drv.EmitEvent("go", "on_press", nil); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].WidgetID != "go" || got[0].Type != event.OnPress {
		t.Fatalf("payloads = %+v, want one on_press from go", got)
	}

	binding.Cancel()
	if err := drv.EmitEvent("go", "on_press", nil); err == nil {
		t.Error("canceled binding should have detached the native listener")
	}
	if len(got) != 1 {
		t.Errorf("canceled binding still delivered, payloads = %d", len(got))
	}
}

func TestBindFoldsIntoChangeHandler(t *testing.T) {
	a, drv := newTestAdapter(t)
	h, err := a.Materialize(spec.MustBuild(spec.KindTextInput, "name", nil))
	if err != nil {
		t.Fatal(err)
	}
	var got []event.Payload
	if _, err := a.BindEvent(h, event.Bind, "value", func(p event.Payload) {
		got = append(got, p)
	}); err != nil {
		t.Fatal(err)
	}
	// Toga surfaces property observation through on_change.
	if err := drv.EmitEvent("name", "on_change", "Ada"); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Value != "Ada" {
		t.Fatalf("payloads = %+v, want one with value Ada", got)
	}
}

func TestTouchEventsUnsupported(t *testing.T) {
	a, _ := newTestAdapter(t)
	h, err := a.Materialize(spec.MustBuild(spec.KindContainer, "box", nil))
	if err != nil {
		t.Fatal(err)
	}
	_, err = a.BindEvent(h, event.OnTouchDown, "", func(event.Payload) {})
	if !errors.Is(err, errors.KindServiceArgument) {
		t.Errorf("error kind = %v, want KindServiceArgument", errors.KindOf(err))
	}
}

func TestArrangeRecordsChildrenInOrder(t *testing.T) {
	a, drv := newTestAdapter(t)
	box, _ := a.Materialize(spec.MustBuild(spec.KindContainer, "box", nil))
	left, _ := a.Materialize(spec.MustBuild(spec.KindLabel, "left", nil))
	right, _ := a.Materialize(spec.MustBuild(spec.KindLabel, "right", nil))

	err := a.Arrange(box, backend.Arrangement{
		Direction: "row",
		Alignment: "center",
		Children: []backend.ChildSlot{
			{Handle: left, Share: 0.5},
			{Handle: right, Share: 0.5},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	obj, _ := drv.ObjectByWidgetID("box")
	if len(obj.Children) != 2 {
		t.Fatalf("arranged %d children, want 2", len(obj.Children))
	}
	if obj.ArrangeArgs["direction"] != "ROW" || obj.ArrangeArgs["alignment"] != "CENTER" {
		t.Errorf("arrange args = %v, want Pack ROW/CENTER", obj.ArrangeArgs)
	}
	if obj.Shares[0] != 0.5 || obj.Shares[1] != 0.5 {
		t.Errorf("shares = %v, want equal halves", obj.Shares)
	}
}

func TestRebindChangeListenerDetachesDisplacedBinding(t *testing.T) {
	a, drv := newTestAdapter(t)
	h, err := a.Materialize(spec.MustBuild(spec.KindTextInput, "name", nil))
	if err != nil {
		t.Fatal(err)
	}

	// A property binding folds into on_change and collides with a plain
	// change handler on the same widget; the later binding wins.
	var first, second []event.Payload
	b1, err := a.BindEvent(h, event.OnChange, "", func(p event.Payload) {
		first = append(first, p)
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.BindEvent(h, event.Bind, "value", func(p event.Payload) {
		second = append(second, p)
	}); err != nil {
		t.Fatal(err)
	}
	if !b1.IsCanceled() {
		t.Error("displaced binding was left active")
	}

	// The replacement keeps the native listener; only it receives.
	if err := drv.EmitEvent("name", "on_change", "Ada"); err != nil {
		t.Fatal(err)
	}
	if len(first) != 0 {
		t.Errorf("displaced binding delivered %d payloads", len(first))
	}
	if len(second) != 1 || second[0].Value != "Ada" {
		t.Fatalf("payloads = %+v, want one with value Ada", second)
	}
}
