package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Format of the speech payload returned by the service.
const (
	SampleRate = 24000
	Channels   = 1
)

// Decode converts little-endian PCM16 bytes into samples in [-1, 1).
// A trailing odd byte is ignored.
func Decode(pcm []byte) []float32 {
	samples := make([]float32, len(pcm)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(pcm[2*i:]))
		samples[i] = float32(v) / 32768.0
	}
	return samples
}

// EncodeFloat32LE packs samples as little-endian IEEE 754 floats, the
// layout expected by float32 output devices.
func EncodeFloat32LE(samples []float32) []byte {
	out := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(s))
	}
	return out
}

// Duration returns the playback length of pcm in seconds.
func Duration(pcm []byte, sampleRate, channels int) float64 {
	if sampleRate <= 0 || channels <= 0 {
		return 0
	}
	return float64(len(pcm)/(2*channels)) / float64(sampleRate)
}

const wavHeaderSize = 44

// EncodeWAV writes pcm (16-bit little-endian) wrapped in a RIFF/WAVE
// container so browsers can play it directly.
func EncodeWAV(w io.Writer, pcm []byte, sampleRate, channels int) error {
	if sampleRate <= 0 || channels <= 0 {
		return fmt.Errorf("invalid wav format: rate=%d channels=%d", sampleRate, channels)
	}
	data := pcm[:len(pcm)&^1]
	blockAlign := channels * 2
	header := make([]byte, wavHeaderSize)
	copy(header[0:], "RIFF")
	binary.LittleEndian.PutUint32(header[4:], uint32(36+len(data)))
	copy(header[8:], "WAVE")
	copy(header[12:], "fmt ")
	binary.LittleEndian.PutUint32(header[16:], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(header[20:], 1)  // PCM
	binary.LittleEndian.PutUint16(header[22:], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(header[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:], 16)
	copy(header[36:], "data")
	binary.LittleEndian.PutUint32(header[40:], uint32(len(data)))

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	return nil
}
