package glk

import (
	"fmt"

	"github.com/chazu/glkrun/protocol"
)

// FileRef names a file in the session's storage backend together with its
// usage category and text/binary mode. A fileref never holds an open file;
// stream creation goes through the stream subsystem.
type FileRef struct {
	id   uint32
	Rock uint32

	// DispatchRock is the foreign VM's opaque tag for this fileref.
	DispatchRock DispatchRock

	Filename string
	Usage    uint32
	TextMode bool
}

// ID returns the fileref's stable id.
func (f *FileRef) ID() uint32 { return f.id }

func (s *Session) newFileRef(filename string, usage, rock uint32) *FileRef {
	f := &FileRef{
		Rock:     rock,
		Filename: filename,
		Usage:    usage,
		TextMode: usage&FileusageTextMode != 0,
	}
	f.id = s.filerefs.add(f)
	if s.objRegistry != nil {
		f.DispatchRock = s.objRegistry.Register(f, ClassFileref)
	}
	return f
}

// FilerefCreateTemp creates a fileref with a fresh throwaway name.
func (s *Session) FilerefCreateTemp(usage, rock uint32) *FileRef {
	name := fmt.Sprintf("glktmp_%d", s.filerefs.nextID)
	return s.newFileRef(name, usage, rock)
}

// FilerefCreateByName creates a fileref for the given name.
func (s *Session) FilerefCreateByName(usage uint32, name string, rock uint32) *FileRef {
	if name == "" {
		return nil
	}
	return s.newFileRef(name, usage, rock)
}

// FilerefCreateFromFileref creates a fileref reusing another's filename
// under a new usage.
func (s *Session) FilerefCreateFromFileref(usage uint32, fref *FileRef, rock uint32) *FileRef {
	if fref == nil {
		return nil
	}
	return s.newFileRef(fref.Filename, usage, rock)
}

// FilerefCreateByPrompt asks the display client for a file name through
// the specialinput side of the protocol, blocking until the client
// answers. A rejected prompt returns nil.
func (s *Session) FilerefCreateByPrompt(usage, fmode, rock uint32) *FileRef {
	if s.exited {
		return nil
	}
	s.flushText()
	u := s.buildUpdate(nil, true)
	u.SpecialInput = &protocol.SpecialInput{
		Type:     "fileref_prompt",
		FileMode: filemodeName(fmode),
		FileType: fileusageName(usage),
	}
	if data, err := protocol.MarshalUpdate(u); err == nil {
		s.channel.WriteLine(data)
	}

	for {
		line, err := s.channel.ReadLine()
		if err != nil {
			s.terminate()
			return nil
		}
		ev, perr := protocol.ParseEvent(line)
		if perr != nil {
			continue
		}
		if ev.Type != protocol.EventSpecialResponse {
			continue
		}
		name, ok := ev.TextValue()
		if !ok || name == "" {
			return nil
		}
		return s.newFileRef(name, usage, rock)
	}
}

// FilerefDestroy releases a fileref. The named file is untouched.
func (s *Session) FilerefDestroy(fref *FileRef) {
	if fref == nil {
		return
	}
	if s.objRegistry != nil {
		s.objRegistry.Unregister(fref, ClassFileref, fref.DispatchRock)
	}
	s.filerefs.remove(fref.id)
}

// FilerefIterate walks the fileref registry in creation order.
func (s *Session) FilerefIterate(fref *FileRef, rockptr *uint32) *FileRef {
	var next *FileRef
	var ok bool
	if fref == nil {
		next, ok = s.filerefs.first()
	} else {
		next, ok = s.filerefs.after(fref.id)
	}
	if !ok {
		return nil
	}
	if rockptr != nil {
		*rockptr = next.Rock
	}
	return next
}

// FilerefGetRock returns the fileref's rock, 0 for nil.
func (s *Session) FilerefGetRock(fref *FileRef) uint32 {
	if fref == nil {
		return 0
	}
	return fref.Rock
}

// FilerefDeleteFile removes the named file from storage.
func (s *Session) FilerefDeleteFile(fref *FileRef) {
	if fref == nil || s.store == nil {
		return
	}
	s.store.Delete(fref.Filename)
}

// FilerefDoesFileExist reports whether the named file exists (1/0).
func (s *Session) FilerefDoesFileExist(fref *FileRef) uint32 {
	if fref == nil || s.store == nil {
		return 0
	}
	if s.store.Exists(fref.Filename) {
		return 1
	}
	return 0
}

func filemodeName(fmode uint32) string {
	switch fmode {
	case FilemodeRead:
		return "read"
	case FilemodeWrite:
		return "write"
	case FilemodeReadWrite:
		return "readwrite"
	case FilemodeWriteAppend:
		return "writeappend"
	}
	return "write"
}

func fileusageName(usage uint32) string {
	switch usage & FileusageTypeMask {
	case FileusageSavedGame:
		return "save"
	case FileusageTranscript:
		return "transcript"
	case FileusageInputRecord:
		return "command"
	}
	return "data"
}
