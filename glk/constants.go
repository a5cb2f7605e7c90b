package glk

// The numeric values in this file are fixed by the legacy Glk ABI and must
// not be renumbered.

// GlkVersion is the Glk spec version reported by gestalt (0.7.6).
const GlkVersion = 0x00000706

// Window types.
const (
	WintypeAllTypes   uint32 = 0
	WintypePair       uint32 = 1
	WintypeBlank      uint32 = 2
	WintypeTextBuffer uint32 = 3
	WintypeTextGrid   uint32 = 4
	WintypeGraphics   uint32 = 5
)

// Event types.
const (
	EvtypeNone         uint32 = 0
	EvtypeTimer        uint32 = 1
	EvtypeCharInput    uint32 = 2
	EvtypeLineInput    uint32 = 3
	EvtypeMouseInput   uint32 = 4
	EvtypeArrange      uint32 = 5
	EvtypeRedraw       uint32 = 6
	EvtypeSoundNotify  uint32 = 7
	EvtypeHyperlink    uint32 = 8
	EvtypeVolumeNotify uint32 = 9
)

// Special keycodes, delivered as char input values.
const (
	KeycodeUnknown  uint32 = 0xffffffff
	KeycodeLeft     uint32 = 0xfffffffe
	KeycodeRight    uint32 = 0xfffffffd
	KeycodeUp       uint32 = 0xfffffffc
	KeycodeDown     uint32 = 0xfffffffb
	KeycodeReturn   uint32 = 0xfffffffa
	KeycodeDelete   uint32 = 0xfffffff9
	KeycodeEscape   uint32 = 0xfffffff8
	KeycodeTab      uint32 = 0xfffffff7
	KeycodePageUp   uint32 = 0xfffffff6
	KeycodePageDown uint32 = 0xfffffff5
	KeycodeHome     uint32 = 0xfffffff4
	KeycodeEnd      uint32 = 0xfffffff3
	KeycodeFunc1    uint32 = 0xffffffef
	KeycodeFunc2    uint32 = 0xffffffee
	KeycodeFunc3    uint32 = 0xffffffed
	KeycodeFunc4    uint32 = 0xffffffec
	KeycodeFunc5    uint32 = 0xffffffeb
	KeycodeFunc6    uint32 = 0xffffffea
	KeycodeFunc7    uint32 = 0xffffffe9
	KeycodeFunc8    uint32 = 0xffffffe8
	KeycodeFunc9    uint32 = 0xffffffe7
	KeycodeFunc10   uint32 = 0xffffffe6
	KeycodeFunc11   uint32 = 0xffffffe5
	KeycodeFunc12   uint32 = 0xffffffe4
	KeycodeMaxVal   uint32 = 28
)

// Text styles.
const (
	StyleNormal       uint32 = 0
	StyleEmphasized   uint32 = 1
	StylePreformatted uint32 = 2
	StyleHeader       uint32 = 3
	StyleSubheader    uint32 = 4
	StyleAlert        uint32 = 5
	StyleNote         uint32 = 6
	StyleBlockQuote   uint32 = 7
	StyleInput        uint32 = 8
	StyleUser1        uint32 = 9
	StyleUser2        uint32 = 10
	StyleNumStyles    uint32 = 11
)

// Window split methods.
const (
	WinmethodLeft  uint32 = 0x00
	WinmethodRight uint32 = 0x01
	WinmethodAbove uint32 = 0x02
	WinmethodBelow uint32 = 0x03

	WinmethodDirMask uint32 = 0x0f

	WinmethodFixed        uint32 = 0x10
	WinmethodProportional uint32 = 0x20
	WinmethodDivisionMask uint32 = 0xf0

	WinmethodBorder     uint32 = 0x000
	WinmethodNoBorder   uint32 = 0x100
	WinmethodBorderMask uint32 = 0x100
)

// File usages and modes.
const (
	FileusageData        uint32 = 0x00
	FileusageSavedGame   uint32 = 0x01
	FileusageTranscript  uint32 = 0x02
	FileusageInputRecord uint32 = 0x03
	FileusageTypeMask    uint32 = 0x0f

	FileusageTextMode   uint32 = 0x100
	FileusageBinaryMode uint32 = 0x000
)

const (
	FilemodeWrite       uint32 = 0x01
	FilemodeRead        uint32 = 0x02
	FilemodeReadWrite   uint32 = 0x03
	FilemodeWriteAppend uint32 = 0x05
)

// Seek modes.
const (
	SeekmodeStart   uint32 = 0
	SeekmodeCurrent uint32 = 1
	SeekmodeEnd     uint32 = 2
)

// Gestalt selectors.
const (
	GestaltVersion              uint32 = 0
	GestaltCharInput            uint32 = 1
	GestaltLineInput            uint32 = 2
	GestaltCharOutput           uint32 = 3
	GestaltMouseInput           uint32 = 4
	GestaltTimer                uint32 = 5
	GestaltGraphics             uint32 = 6
	GestaltDrawImage            uint32 = 7
	GestaltSound                uint32 = 8
	GestaltSoundVolume          uint32 = 9
	GestaltSoundNotify          uint32 = 10
	GestaltHyperlinks           uint32 = 11
	GestaltHyperlinkInput       uint32 = 12
	GestaltSoundMusic           uint32 = 13
	GestaltGraphicsTransparency uint32 = 14
	GestaltUnicode              uint32 = 15
	GestaltUnicodeNorm          uint32 = 16
	GestaltLineInputEcho        uint32 = 17
	GestaltLineTerminators      uint32 = 18
	GestaltLineTerminatorKey    uint32 = 19
	GestaltDateTime             uint32 = 20
	GestaltSound2               uint32 = 21
	GestaltResourceStream       uint32 = 22
	GestaltGraphicsCharInput    uint32 = 23
)

// CharOutput answers.
const (
	GestaltCharOutputCannotPrint uint32 = 0
	GestaltCharOutputApproxPrint uint32 = 1
	GestaltCharOutputExactPrint  uint32 = 2
)

// Image alignments for inline image spans.
const (
	ImagealignInlineUp     uint32 = 1
	ImagealignInlineDown   uint32 = 2
	ImagealignInlineCenter uint32 = 3
	ImagealignMarginLeft   uint32 = 4
	ImagealignMarginRight  uint32 = 5
)

// Style hints (accepted and ignored; no visual hinting is modeled).
const (
	StylehintIndentation     uint32 = 0
	StylehintParaIndentation uint32 = 1
	StylehintJustification   uint32 = 2
	StylehintSize            uint32 = 3
	StylehintWeight          uint32 = 4
	StylehintOblique         uint32 = 5
	StylehintProportional    uint32 = 6
	StylehintTextColor       uint32 = 7
	StylehintBackColor       uint32 = 8
	StylehintReverseColor    uint32 = 9
	StylehintNumHints        uint32 = 10
)

// styleNames maps style constants to protocol style names.
var styleNames = [StyleNumStyles]string{
	"normal", "emphasized", "preformatted", "header", "subheader",
	"alert", "note", "blockquote", "input", "user1", "user2",
}

// StyleName returns the protocol name for a style constant.
func StyleName(style uint32) string {
	if style < StyleNumStyles {
		return styleNames[style]
	}
	return "normal"
}

// keycodeNames maps special keycodes to protocol terminator/key names.
var keycodeNames = map[uint32]string{
	KeycodeLeft:     "left",
	KeycodeRight:    "right",
	KeycodeUp:       "up",
	KeycodeDown:     "down",
	KeycodeReturn:   "return",
	KeycodeDelete:   "delete",
	KeycodeEscape:   "escape",
	KeycodeTab:      "tab",
	KeycodePageUp:   "pageup",
	KeycodePageDown: "pagedown",
	KeycodeHome:     "home",
	KeycodeEnd:      "end",
	KeycodeFunc1:    "func1",
	KeycodeFunc2:    "func2",
	KeycodeFunc3:    "func3",
	KeycodeFunc4:    "func4",
	KeycodeFunc5:    "func5",
	KeycodeFunc6:    "func6",
	KeycodeFunc7:    "func7",
	KeycodeFunc8:    "func8",
	KeycodeFunc9:    "func9",
	KeycodeFunc10:   "func10",
	KeycodeFunc11:   "func11",
	KeycodeFunc12:   "func12",
}

// keycodeByName is the reverse mapping, used when decoding char input.
var keycodeByName = func() map[string]uint32 {
	m := make(map[string]uint32, len(keycodeNames))
	for code, name := range keycodeNames {
		m[name] = code
	}
	return m
}()
