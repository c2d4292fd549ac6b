// Package security decides whether a request may touch the host.
//
// Every request passes through the Gate, which combines:
//
//   - Principal authorization (allow-list, empty list means unrestricted)
//   - Command blacklist (first-token / prefix match against blacklist_cmd.txt)
//   - Directory blacklist (separator-bounded containment against blacklist_dir.txt)
//
// Blacklists are re-read on every check so edits apply without a restart. A
// missing list is treated as empty.
//
// The command check only inspects the start of the text. Anything after a
// shell operator (";", "&&", "|") is not matched; ShellCommandAnalyzer reports
// such commands so they can be logged.
package security
