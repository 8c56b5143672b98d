// Package pipeline turns Markdown into document commands.
//
// The stages run in order:
//   - Preprocessing: line endings, Unicode NFC, splitting text that trails a
//     single-line $$ math block onto its own line
//   - Tokenizing via goldmark (GFM plus a $$ math block parser) into Token values
//   - Emitting docx.Command values, rendering math blocks to PNG files through
//     a MathRenderer and optionally coloring code with chroma
//
// Applying commands and writing the .docx package is left to the docx package.
package pipeline
