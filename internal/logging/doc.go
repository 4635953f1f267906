// Package logging is the small structured-logging facade shared by the
// tutor, the session and the HTTP server. Entries go through zerolog, as
// JSON lines for the server and through the console writer elsewhere.
package logging
