package glk

import "testing"

type regEvent struct {
	obj   any
	class ObjectClass
	rock  DispatchRock
}

// fakeObjects counts registrations the way a VM-side object table would.
type fakeObjects struct {
	next       uint32
	registered []regEvent
	released   []regEvent
}

func (f *fakeObjects) Register(obj any, class ObjectClass) DispatchRock {
	f.next++
	rock := DispatchRock{Num: f.next}
	f.registered = append(f.registered, regEvent{obj, class, rock})
	return rock
}

func (f *fakeObjects) Unregister(obj any, class ObjectClass, rock DispatchRock) {
	f.released = append(f.released, regEvent{obj, class, rock})
}

type retainEvent struct {
	array    any
	length   uint32
	typecode string
	rock     DispatchRock
}

type fakeRetained struct {
	next     uint32
	retained []retainEvent
	released []retainEvent
}

func (f *fakeRetained) Retain(array any, length uint32, typecode string) DispatchRock {
	f.next++
	rock := DispatchRock{Num: f.next}
	f.retained = append(f.retained, retainEvent{array, length, typecode, rock})
	return rock
}

func (f *fakeRetained) Release(array any, length uint32, typecode string, rock DispatchRock) {
	f.released = append(f.released, retainEvent{array, length, typecode, rock})
}

func TestObjectRegistryLifecycle(t *testing.T) {
	s, _, _ := newTestSession(t)
	reg := &fakeObjects{}
	s.SetObjectRegistry(reg)

	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	str := s.StreamOpenMemory(make([]byte, 4), FilemodeWrite, 0)
	fref := s.FilerefCreateByName(FileusageData, "f", 0)

	// Window, window stream, memory stream, fileref.
	if len(reg.registered) != 4 {
		t.Fatalf("registered %d objects", len(reg.registered))
	}
	if w.DispatchRock.Num == 0 || str.DispatchRock.Num == 0 || fref.DispatchRock.Num == 0 {
		t.Error("rock not stored on object")
	}

	s.FilerefDestroy(fref)
	s.StreamClose(str, nil)
	s.WindowClose(w, nil)
	if len(reg.released) != 4 {
		t.Fatalf("released %d objects", len(reg.released))
	}
	for _, ev := range reg.released {
		if ev.rock.Num == 0 {
			t.Error("release without the registration rock")
		}
	}
}

func TestObjectRegistryRetroactive(t *testing.T) {
	s, _, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	str := s.StreamOpenMemory(make([]byte, 4), FilemodeWrite, 0)

	reg := &fakeObjects{}
	s.SetObjectRegistry(reg)
	if len(reg.registered) != 3 {
		t.Fatalf("retroactively registered %d objects", len(reg.registered))
	}
	if w.DispatchRock.Num == 0 || str.DispatchRock.Num == 0 {
		t.Error("retroactive rock not stored")
	}

	classes := map[ObjectClass]int{}
	for _, ev := range reg.registered {
		classes[ev.class]++
	}
	if classes[ClassWindow] != 1 || classes[ClassStream] != 2 {
		t.Errorf("classes = %v", classes)
	}
}

func TestRetainedLineBuffer(t *testing.T) {
	s, ch, _ := newTestSession(t)
	ret := &fakeRetained{}
	s.SetRetainedRegistry(ret)

	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	buf := make([]byte, 32)
	s.RequestLineEvent(w, buf, 0)
	if len(ret.retained) != 1 {
		t.Fatalf("retained %d arrays", len(ret.retained))
	}
	got := ret.retained[0]
	if got.length != 32 || got.typecode != TypecodeByteArray {
		t.Errorf("retain = %+v", got)
	}

	ch.push(`{"type":"line","gen":1,"window":` + itoa(w.ID()) + `,"value":"hi"}`)
	var ev Event
	s.Select(&ev)
	if ev.Type != EvtypeLineInput {
		t.Fatalf("event = %+v", ev)
	}
	if len(ret.released) != 1 {
		t.Fatalf("released %d arrays", len(ret.released))
	}
	rel := ret.released[0]
	if rel.typecode != TypecodeByteArray || rel.rock != got.rock {
		t.Errorf("release = %+v", rel)
	}
}

func TestRetainedUnicodeBufferTypecode(t *testing.T) {
	s, _, _ := newTestSession(t)
	ret := &fakeRetained{}
	s.SetRetainedRegistry(ret)

	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	s.RequestLineEventUni(w, make([]rune, 16), 0)
	if len(ret.retained) != 1 || ret.retained[0].typecode != TypecodeWordArray {
		t.Fatalf("retained = %+v", ret.retained)
	}

	// Cancelling releases the loan too.
	var ev Event
	s.CancelLineEvent(w, &ev)
	if len(ret.released) != 1 {
		t.Errorf("released %d arrays", len(ret.released))
	}
}

func TestRetainedMemoryStream(t *testing.T) {
	s, _, _ := newTestSession(t)
	ret := &fakeRetained{}
	s.SetRetainedRegistry(ret)

	buf := make([]byte, 8)
	str := s.StreamOpenMemory(buf, FilemodeWrite, 0)
	if len(ret.retained) != 1 || ret.retained[0].typecode != TypecodeByteArray {
		t.Fatalf("retained = %+v", ret.retained)
	}
	s.StreamClose(str, nil)
	if len(ret.released) != 1 {
		t.Errorf("released %d arrays", len(ret.released))
	}
}

func TestRetainedRegistryRetroactive(t *testing.T) {
	s, _, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	s.RequestLineEvent(w, make([]byte, 16), 0)
	s.StreamOpenMemoryUni(make([]rune, 4), FilemodeWrite, 0)

	ret := &fakeRetained{}
	s.SetRetainedRegistry(ret)
	if len(ret.retained) != 2 {
		t.Fatalf("retroactively retained %d arrays", len(ret.retained))
	}
	codes := map[string]int{}
	for _, ev := range ret.retained {
		codes[ev.typecode]++
	}
	if codes[TypecodeByteArray] != 1 || codes[TypecodeWordArray] != 1 {
		t.Errorf("typecodes = %v", codes)
	}
}
