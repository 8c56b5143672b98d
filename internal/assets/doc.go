// Package assets provides the WordprocessingML style sets that give a
// document its named styles and list numbering. Style sets can be loaded from
// embedded files or custom filesystem paths.
//
// # Loader Architecture
//
//	StyleSetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (default, serif)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by sessions. It tries the custom
// FilesystemLoader first and falls back to EmbeddedLoader when the set is not
// found there, so a user directory can override one set and keep the rest.
//
// # Directory Structure
//
//	{basePath}/
//	└── stylesets/
//	    └── {name}/
//	        ├── styles.xml      # required, w:styles root
//	        └── numbering.xml   # optional, w:numbering root
//
// Styles referenced by the converter are looked up by style ID: "Title",
// "Heading1" to "Heading9", "Quote", "ListBullet", "ListNumber",
// "TableGrid" and "Caption". A missing style is not an error; Word falls back
// to Normal.
//
// # Security
//
// Style set names are validated to prevent path traversal.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
