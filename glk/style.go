package glk

// Style hints are accepted and ignored: no visual hinting is modeled, the
// client owns presentation. The setters exist so legacy VMs calling them
// see the API they expect.

// StylehintSet accepts a style hint and discards it.
func (s *Session) StylehintSet(wintype, style, hint uint32, val int32) {}

// StylehintClear accepts a style-hint clear and discards it.
func (s *Session) StylehintClear(wintype, style, hint uint32) {}

// StyleDistinguish reports whether two styles look different. With no
// hinting modeled, distinct styles are assumed distinguishable.
func (s *Session) StyleDistinguish(w *Window, style1, style2 uint32) uint32 {
	return boolGestalt(style1 != style2)
}

// StyleMeasure reports a style attribute; nothing is modeled, so the
// answer is always "unknown" (0 with a zeroed result).
func (s *Session) StyleMeasure(w *Window, style, hint uint32, result *uint32) uint32 {
	if result != nil {
		*result = 0
	}
	return 0
}
