// Package launcher hands work items to the operating system's default
// file-open action, which routes them to the registered desktop application.
//
// Launches are fire-and-forget: an Opener returns as soon as the OS accepted
// the request, and any helper process it spawned is reaped in the background.
// Windows uses ShellExecute, macOS uses open(1), and other Unix systems use
// xdg-open(1). A configured command overrides the platform default, which
// lets the application be driven through wrappers such as wine.
package launcher
