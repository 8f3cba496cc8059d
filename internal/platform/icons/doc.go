// Package icons defines the icon catalog shared across the platform.
//
// The catalog maps exact, case-sensitive icon names to loaders that produce
// parsed SVG assets. Callers resolve names asynchronously through the
// resolver package and render them with iconview; this package only knows
// how icons are registered, located and parsed.
package icons
