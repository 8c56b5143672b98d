// Package process manages the process groups of external tools (latex,
// dvipng, headless Chrome) so cancellation also stops their children.
package process
