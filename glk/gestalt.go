package glk

// Gestalt answers a capability query.
func (s *Session) Gestalt(sel, val uint32) uint32 {
	return s.GestaltExt(sel, val, nil)
}

// GestaltExt answers a capability query with an optional result array.
// Fixed answers follow the legacy implementation; capabilities that depend
// on the attached client (timer, graphics, mouse, hyperlinks) answer from
// the negotiated support list.
func (s *Session) GestaltExt(sel, val uint32, arr []uint32) uint32 {
	switch sel {
	case GestaltVersion:
		return GlkVersion

	case GestaltCharInput:
		if val <= 0x7F || (val >= 0xA0 && val <= 0x10FFFF) {
			return 1
		}
		if val > 0xFFFFFFFF-KeycodeMaxVal {
			return 1
		}
		return 0

	case GestaltLineInput:
		if val >= 32 && (val <= 0x7F || (val >= 0xA0 && val <= 0x10FFFF)) {
			return 1
		}
		return 0

	case GestaltCharOutput:
		if val <= 0x7F || (val >= 0xA0 && val <= 0x10FFFF) {
			if len(arr) >= 1 {
				arr[0] = 1
			}
			return GestaltCharOutputExactPrint
		}
		if len(arr) >= 1 {
			arr[0] = 0
		}
		return GestaltCharOutputCannotPrint

	case GestaltUnicode, GestaltUnicodeNorm:
		return 1

	case GestaltTimer:
		return boolGestalt(s.supports("timer"))

	case GestaltGraphics, GestaltDrawImage, GestaltGraphicsTransparency:
		return boolGestalt(s.supports("graphics"))
	case GestaltGraphicsCharInput:
		return 0

	case GestaltMouseInput:
		return boolGestalt(s.supports("mouse"))

	case GestaltHyperlinks, GestaltHyperlinkInput:
		return boolGestalt(s.supports("hyperlinks"))

	case GestaltSound, GestaltSoundVolume, GestaltSoundNotify,
		GestaltSoundMusic, GestaltSound2:
		return 0

	case GestaltDateTime:
		return 1

	case GestaltLineInputEcho:
		return 1

	case GestaltLineTerminators:
		return 1
	case GestaltLineTerminatorKey:
		_, ok := keycodeNames[val]
		return boolGestalt(ok)

	case GestaltResourceStream:
		return 1

	default:
		return 0
	}
}

func boolGestalt(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
