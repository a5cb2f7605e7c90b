package glk

// Object classes, matching the legacy dispatch layer's numbering.
type ObjectClass uint32

const (
	ClassWindow   ObjectClass = 0
	ClassStream   ObjectClass = 1
	ClassFileref  ObjectClass = 2
	ClassSchannel ObjectClass = 3
)

// Retained-array type codes describing the shape of a loaned buffer.
const (
	TypecodeByteArray = "&+#!Cn"
	TypecodeWordArray = "&+#!Iu"
)

// DispatchRock is an opaque tag assigned by the foreign VM's own object
// tracker. This layer stores it and hands it back unchanged; it never
// inspects either field.
type DispatchRock struct {
	Num uint32
	Ptr any
}

// ObjectRegistry is the foreign VM's object tracker. It is told about
// every window, stream and fileref this layer creates, and told again
// when the object is destroyed.
type ObjectRegistry interface {
	Register(obj any, class ObjectClass) DispatchRock
	Unregister(obj any, class ObjectClass, rock DispatchRock)
}

// RetainedRegistry is the foreign VM's array tracker. A buffer the VM has
// loaned to this layer (line-input buffers, memory-stream buffers) is
// retained until released, so the VM's memory manager knows not to reclaim
// it; the typecode describes the array shape on release.
type RetainedRegistry interface {
	Retain(array any, length uint32, typecode string) DispatchRock
	Release(array any, length uint32, typecode string, rock DispatchRock)
}

// SetObjectRegistry installs the VM's object tracker. Every currently live
// object is retroactively registered so dispatch state matches the object
// model exactly, no matter how late the VM installs its hooks.
func (s *Session) SetObjectRegistry(reg ObjectRegistry) {
	s.objRegistry = reg
	if reg == nil {
		return
	}
	s.windows.each(func(w *Window) {
		w.DispatchRock = reg.Register(w, ClassWindow)
	})
	s.streams.each(func(str *Stream) {
		str.DispatchRock = reg.Register(str, ClassStream)
	})
	s.filerefs.each(func(f *FileRef) {
		f.DispatchRock = reg.Register(f, ClassFileref)
	})
}

// SetRetainedRegistry installs the VM's retained-array tracker and
// retroactively retains every buffer currently on loan.
func (s *Session) SetRetainedRegistry(reg RetainedRegistry) {
	s.retained = reg
	if reg == nil {
		return
	}
	s.windows.each(func(w *Window) {
		if !w.lineRequest || w.lineBufRetained {
			return
		}
		if w.requestUni && w.lineBufUni != nil {
			w.lineBufRock = reg.Retain(w.lineBufUni, uint32(len(w.lineBufUni)), TypecodeWordArray)
			w.lineBufRetained = true
		} else if w.lineBuf != nil {
			w.lineBufRock = reg.Retain(w.lineBuf, uint32(len(w.lineBuf)), TypecodeByteArray)
			w.lineBufRetained = true
		}
	})
	s.streams.each(func(str *Stream) {
		if str.kind != streamMemory || str.arrayRetained {
			return
		}
		if str.bufUni != nil {
			str.arrayRock = reg.Retain(str.bufUni, uint32(len(str.bufUni)), TypecodeWordArray)
			str.arrayRetained = true
		} else if str.buf != nil {
			str.arrayRock = reg.Retain(str.buf, uint32(len(str.buf)), TypecodeByteArray)
			str.arrayRetained = true
		}
	})
}
