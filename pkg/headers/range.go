package headers

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const rangeUTCLayout = "20060102T150405Z"

// RangeValue is the value of a Range header.
// It can be
// - *RangeNPT
// - *RangeSMPTE
// - *RangeUTC
type RangeValue interface {
	unit() string
	unmarshal(start string, end string) error
	marshal() (string, string)
}

func newRangeValue(unit string) RangeValue {
	switch unit {
	case "npt":
		return &RangeNPT{}

	case "smpte":
		return &RangeSMPTE{}

	case "clock":
		return &RangeUTC{}
	}
	return nil
}

func parseNPTTime(s string) (time.Duration, error) {
	fields := strings.Split(s, ":")
	if len(fields) > 3 {
		return 0, fmt.Errorf("invalid NPT time (%v)", s)
	}

	var minutes uint64
	for _, f := range fields[:len(fields)-1] {
		n, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid NPT time (%v)", s)
		}
		minutes = minutes*60 + n
	}

	secs, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("invalid NPT time (%v)", s)
	}

	return time.Duration(secs*float64(time.Second)) + time.Duration(minutes)*time.Minute, nil
}

func formatNPTTime(d time.Duration, clock bool) string {
	if !clock {
		return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
	}

	cs := int64(d.Round(10*time.Millisecond) / (10 * time.Millisecond))
	return fmt.Sprintf("%02d:%02d:%02d.%02d", cs/360000, (cs/6000)%60, (cs/100)%60, cs%100)
}

// RangeNPT is a range expressed in NPT units.
type RangeNPT struct {
	Start time.Duration
	End   *time.Duration

	// write times as hh:mm:ss.ff instead of seconds.
	Clock bool
}

func (r *RangeNPT) unit() string {
	return "npt"
}

func (r *RangeNPT) unmarshal(start string, end string) error {
	var err error
	r.Start, err = parseNPTTime(start)
	if err != nil {
		return err
	}
	r.Clock = strings.Contains(start, ":")

	if end != "" {
		d, err := parseNPTTime(end)
		if err != nil {
			return err
		}
		r.End = &d
	}

	return nil
}

func (r *RangeNPT) marshal() (string, string) {
	end := ""
	if r.End != nil {
		end = formatNPTTime(*r.End, r.Clock)
	}
	return formatNPTTime(r.Start, r.Clock), end
}

// RangeSMPTETime is a time expressed in SMPTE unit.
type RangeSMPTETime struct {
	Time     time.Duration
	Frame    uint
	Subframe uint
}

func (t *RangeSMPTETime) unmarshal(s string) error {
	fields := strings.Split(s, ":")
	if len(fields) != 3 && len(fields) != 4 {
		return fmt.Errorf("invalid SMPTE time (%v)", s)
	}

	var secs uint64
	for _, f := range fields[:3] {
		n, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid SMPTE time (%v)", s)
		}
		secs = secs*60 + n
	}
	t.Time = time.Duration(secs) * time.Second

	if len(fields) == 4 {
		frame, subframe, hasSubframe := strings.Cut(fields[3], ".")

		n, err := strconv.ParseUint(frame, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid SMPTE time (%v)", s)
		}
		t.Frame = uint(n)

		if hasSubframe {
			n, err = strconv.ParseUint(subframe, 10, 32)
			if err != nil {
				return fmt.Errorf("invalid SMPTE time (%v)", s)
			}
			t.Subframe = uint(n)
		}
	}

	return nil
}

func (t RangeSMPTETime) marshal() string {
	secs := int64(t.Time / time.Second)
	ret := fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)

	if t.Frame > 0 || t.Subframe > 0 {
		ret += fmt.Sprintf(":%02d", t.Frame)
		if t.Subframe > 0 {
			ret += fmt.Sprintf(".%02d", t.Subframe)
		}
	}

	return ret
}

// RangeSMPTE is a range expressed in SMPTE unit.
type RangeSMPTE struct {
	Start RangeSMPTETime
	End   *RangeSMPTETime
}

func (r *RangeSMPTE) unit() string {
	return "smpte"
}

func (r *RangeSMPTE) unmarshal(start string, end string) error {
	err := r.Start.unmarshal(start)
	if err != nil {
		return err
	}

	if end != "" {
		var t RangeSMPTETime
		err = t.unmarshal(end)
		if err != nil {
			return err
		}
		r.End = &t
	}

	return nil
}

func (r *RangeSMPTE) marshal() (string, string) {
	end := ""
	if r.End != nil {
		end = r.End.marshal()
	}
	return r.Start.marshal(), end
}

// RangeUTC is a range expressed in UTC units.
type RangeUTC struct {
	Start time.Time
	End   *time.Time
}

func (r *RangeUTC) unit() string {
	return "clock"
}

func (r *RangeUTC) unmarshal(start string, end string) error {
	var err error
	r.Start, err = time.Parse(rangeUTCLayout, start)
	if err != nil {
		return fmt.Errorf("invalid UTC time (%v)", start)
	}

	if end != "" {
		t, err := time.Parse(rangeUTCLayout, end)
		if err != nil {
			return fmt.Errorf("invalid UTC time (%v)", end)
		}
		r.End = &t
	}

	return nil
}

func (r *RangeUTC) marshal() (string, string) {
	end := ""
	if r.End != nil {
		end = r.End.Format(rangeUTCLayout)
	}
	return r.Start.Format(rangeUTCLayout), end
}

// Range is a Range header.
type Range struct {
	// range expressed in a certain unit.
	Value RangeValue

	// time at which the operation is to be made effective.
	Time *time.Time
}

// Unmarshal decodes a Range header.
// Unknown parameters are ignored.
func (h *Range) Unmarshal(v string) error {
	if v == "" {
		return fmt.Errorf("value not provided")
	}

	h.Value = nil
	h.Time = nil

	for _, part := range strings.Split(v, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return fmt.Errorf("invalid parameter (%v)", part)
		}

		if key == "time" {
			t, err := time.Parse(rangeUTCLayout, val)
			if err != nil {
				return fmt.Errorf("invalid UTC time (%v)", val)
			}
			h.Time = &t
			continue
		}

		rv := newRangeValue(key)
		if rv == nil {
			continue
		}

		start, end, ok := strings.Cut(val, "-")
		if !ok {
			return fmt.Errorf("invalid value (%v)", val)
		}

		err := rv.unmarshal(start, end)
		if err != nil {
			return err
		}
		h.Value = rv
	}

	if h.Value == nil {
		return fmt.Errorf("value not found (%v)", v)
	}

	return nil
}

// Marshal encodes a Range header.
func (h Range) Marshal() string {
	start, end := h.Value.marshal()
	ret := h.Value.unit() + "=" + start + "-" + end

	if h.Time != nil {
		ret += ";time=" + h.Time.Format(rangeUTCLayout)
	}

	return ret
}
