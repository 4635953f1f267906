// Package tutor wraps the generative-language service behind the three
// collaborators of a calculation: the explanation, the spoken rendition of
// that explanation and the follow-up chat.
//
// The explanation and chat replies never fail from the caller's point of
// view; failures are replaced with localized fallback sentences. Speech
// failures are returned as apperrors.CollaboratorError so the caller can
// surface them and re-enable the control.
package tutor
