package glk

// Sound channels are a permanent no-op: creation fails with the sentinel
// value and gestalt reports no sound capability, so a well-behaved VM
// never gets further than asking.

// SChannel is the sound-channel handle type. No instance is ever created.
type SChannel struct {
	Rock         uint32
	DispatchRock DispatchRock
}

// SChannelCreate always fails.
func (s *Session) SChannelCreate(rock uint32) *SChannel { return nil }

// SChannelCreateExt always fails.
func (s *Session) SChannelCreateExt(rock, volume uint32) *SChannel { return nil }

// SChannelDestroy ignores its argument.
func (s *Session) SChannelDestroy(ch *SChannel) {}

// SChannelIterate reports an empty registry.
func (s *Session) SChannelIterate(ch *SChannel, rockptr *uint32) *SChannel { return nil }

// SChannelGetRock returns 0; no channel exists.
func (s *Session) SChannelGetRock(ch *SChannel) uint32 { return 0 }

// SChannelPlay reports failure.
func (s *Session) SChannelPlay(ch *SChannel, snd uint32) uint32 { return 0 }

// SChannelPlayExt reports failure.
func (s *Session) SChannelPlayExt(ch *SChannel, snd, repeats, notify uint32) uint32 { return 0 }

// SChannelPlayMulti reports zero sounds started.
func (s *Session) SChannelPlayMulti(chans []*SChannel, snds []uint32, notify uint32) uint32 {
	return 0
}

// SChannelStop does nothing.
func (s *Session) SChannelStop(ch *SChannel) {}

// SChannelSetVolume does nothing.
func (s *Session) SChannelSetVolume(ch *SChannel, vol uint32) {}

// SChannelSetVolumeExt does nothing.
func (s *Session) SChannelSetVolumeExt(ch *SChannel, vol, duration, notify uint32) {}

// SChannelPause does nothing.
func (s *Session) SChannelPause(ch *SChannel) {}

// SChannelUnpause does nothing.
func (s *Session) SChannelUnpause(ch *SChannel) {}

// SoundLoadHint does nothing.
func (s *Session) SoundLoadHint(snd, flag uint32) {}
