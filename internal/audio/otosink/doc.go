// Package otosink implements audio.Sink on the local sound device through
// github.com/ebitengine/oto/v3. Builds without cgo get a stub that always
// fails.
package otosink
