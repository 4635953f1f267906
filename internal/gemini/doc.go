// Package gemini provides the Google Gemini implementation of the tutor
// provider boundary, built on google.golang.org/genai.
package gemini
