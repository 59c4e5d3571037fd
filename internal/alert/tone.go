package alert

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

// Tone describes a sine beep with an exponential gain ramp.
type Tone struct {
	Frequency  float64
	Duration   time.Duration
	StartGain  float64
	EndGain    float64
	SampleRate int
}

// DefaultTone is the arrival beep: 800 Hz for 100 ms, gain 0.3 decaying
// to 0.01.
var DefaultTone = Tone{
	Frequency:  800,
	Duration:   100 * time.Millisecond,
	StartGain:  0.3,
	EndGain:    0.01,
	SampleRate: 44100,
}

// Samples returns the number of PCM frames in the tone.
func (t Tone) Samples() int {
	return int(float64(t.SampleRate) * t.Duration.Seconds())
}

// gainAt follows an exponential ramp from StartGain at 0 to EndGain at
// Duration.
func (t Tone) gainAt(sec float64) float64 {
	total := t.Duration.Seconds()
	if total <= 0 || t.StartGain <= 0 || t.EndGain <= 0 {
		return t.StartGain
	}
	return t.StartGain * math.Pow(t.EndGain/t.StartGain, sec/total)
}

// WAV renders the tone as a 16-bit mono PCM WAV file.
func (t Tone) WAV() []byte {
	const (
		bitsPerSample = 16
		channels      = 1
		headerSize    = 44
	)

	n := t.Samples()
	dataSize := n * channels * bitsPerSample / 8
	byteRate := t.SampleRate * channels * bitsPerSample / 8

	var buf bytes.Buffer
	buf.Grow(headerSize + dataSize)

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(t.SampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(byteRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels*bitsPerSample/8))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataSize))

	for i := 0; i < n; i++ {
		sec := float64(i) / float64(t.SampleRate)
		v := math.Sin(2*math.Pi*t.Frequency*sec) * t.gainAt(sec)
		_ = binary.Write(&buf, binary.LittleEndian, int16(v*math.MaxInt16))
	}

	return buf.Bytes()
}
