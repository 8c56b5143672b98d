// Package mathimg renders TeX math expressions to PNG files.
//
// Two engines are available:
//   - LaTeX runs latex and dvipng, the way sympy's preview does
//   - Browser typesets with MathJax in headless Chrome (go-rod) and
//     screenshots the result
//
// Both implement Renderer. New selects one by name.
package mathimg
