// Package preflight provides readiness checks for the interpreter,
// daemon files, and directories that lightmeterctl depends on.
//
// These checks run in two contexts:
//   - The watch loop runs them once at startup so a misconfigured
//     install fails loudly instead of looping forever.
//   - The CLI "lightmeterctl status" command uses them to display
//     environment health alongside daemon liveness.
package preflight
