// Package audio turns the PCM16 speech payload into playable forms: float
// samples for a local output device and a WAV container for browsers. Player
// enforces a single playback at a time.
package audio
