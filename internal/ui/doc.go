// Package ui renders pktdecode results for the terminal.
//
// Output follows a "run once and exit" pattern: a styled result box with the
// version sum and expression value, or a failure box with troubleshooting
// hints, and a colour-coded packet tree. Styling uses Lipgloss; terminal
// detection and sizing use golang.org/x/term.
//
// Callers should fall back to plain text (packet.FormatTree and friends)
// when IsTerminal reports false or colour has been turned off.
package ui
