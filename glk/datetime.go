package glk

import "time"

// TimeVal is a 64-bit Unix timestamp split across two 32-bit halves, plus
// microseconds, in the legacy wire shape.
type TimeVal struct {
	HighSec uint32
	LowSec  uint32
	Microsec int32
}

// Date is a broken-down calendar date in the legacy shape.
type Date struct {
	Year     int32
	Month    int32
	Day      int32
	Weekday  int32
	Hour     int32
	Minute   int32
	Second   int32
	Microsec int32
}

func (tv *TimeVal) unix() int64 {
	return int64(tv.HighSec)<<32 | int64(tv.LowSec)
}

func timeValFromUnix(secs int64, micro int32) TimeVal {
	return TimeVal{
		HighSec:  uint32(uint64(secs) >> 32),
		LowSec:   uint32(uint64(secs) & 0xFFFFFFFF),
		Microsec: micro,
	}
}

func dateFromTime(t time.Time, micro int32) Date {
	return Date{
		Year:     int32(t.Year()),
		Month:    int32(t.Month()),
		Day:      int32(t.Day()),
		Weekday:  int32(t.Weekday()),
		Hour:     int32(t.Hour()),
		Minute:   int32(t.Minute()),
		Second:   int32(t.Second()),
		Microsec: micro,
	}
}

// CurrentTime returns the wall-clock time.
func (s *Session) CurrentTime(tv *TimeVal) {
	if tv == nil {
		return
	}
	now := time.Now()
	*tv = timeValFromUnix(now.Unix(), int32(now.Nanosecond()/1000))
}

// CurrentSimpleTime returns the wall clock divided by factor.
func (s *Session) CurrentSimpleTime(factor uint32) int32 {
	if factor == 0 {
		return 0
	}
	return int32(time.Now().Unix() / int64(factor))
}

// TimeToDateUTC converts a timestamp to a UTC calendar date.
func (s *Session) TimeToDateUTC(tv *TimeVal, date *Date) {
	if tv == nil || date == nil {
		return
	}
	*date = dateFromTime(time.Unix(tv.unix(), 0).UTC(), tv.Microsec)
}

// TimeToDateLocal converts a timestamp to a local calendar date.
func (s *Session) TimeToDateLocal(tv *TimeVal, date *Date) {
	if tv == nil || date == nil {
		return
	}
	*date = dateFromTime(time.Unix(tv.unix(), 0).Local(), tv.Microsec)
}

// SimpleTimeToDateUTC converts a scaled timestamp to a UTC date.
func (s *Session) SimpleTimeToDateUTC(stime int32, factor uint32, date *Date) {
	tv := timeValFromUnix(int64(stime)*int64(factor), 0)
	s.TimeToDateUTC(&tv, date)
}

// SimpleTimeToDateLocal converts a scaled timestamp to a local date.
func (s *Session) SimpleTimeToDateLocal(stime int32, factor uint32, date *Date) {
	tv := timeValFromUnix(int64(stime)*int64(factor), 0)
	s.TimeToDateLocal(&tv, date)
}

// DateToTimeUTC converts a calendar date, read as UTC, to a timestamp.
func (s *Session) DateToTimeUTC(date *Date, tv *TimeVal) {
	if date == nil || tv == nil {
		return
	}
	t := time.Date(int(date.Year), time.Month(date.Month), int(date.Day),
		int(date.Hour), int(date.Minute), int(date.Second), 0, time.UTC)
	*tv = timeValFromUnix(t.Unix(), date.Microsec)
}

// DateToTimeLocal converts a calendar date, read as local time, to a
// timestamp.
func (s *Session) DateToTimeLocal(date *Date, tv *TimeVal) {
	if date == nil || tv == nil {
		return
	}
	t := time.Date(int(date.Year), time.Month(date.Month), int(date.Day),
		int(date.Hour), int(date.Minute), int(date.Second), 0, time.Local)
	*tv = timeValFromUnix(t.Unix(), date.Microsec)
}

// DateToSimpleTimeUTC converts a UTC date to a scaled timestamp.
func (s *Session) DateToSimpleTimeUTC(date *Date, factor uint32) int32 {
	if date == nil || factor == 0 {
		return 0
	}
	var tv TimeVal
	s.DateToTimeUTC(date, &tv)
	return int32(tv.unix() / int64(factor))
}

// DateToSimpleTimeLocal converts a local date to a scaled timestamp.
func (s *Session) DateToSimpleTimeLocal(date *Date, factor uint32) int32 {
	if date == nil || factor == 0 {
		return 0
	}
	var tv TimeVal
	s.DateToTimeLocal(date, &tv)
	return int32(tv.unix() / int64(factor))
}
