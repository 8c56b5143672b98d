// Package docx builds Office Open XML word-processing documents.
//
// A Document is mutated only through Apply, which interprets a closed set of
// Commands in order:
//   - AddHeading, AddParagraph: styled paragraphs built from RunOps
//   - AddTable, SetCellContent: a grid declared up front, then filled cell by cell
//   - AddImage: a centered picture with an italic caption
//   - AddPageBreak
//
// Apply is all-or-nothing: when a command fails, the document returns to its
// state before the call. WriteTo and Save serialize the document as a .docx
// package, copying the style and numbering parts from the Template verbatim.
package docx
