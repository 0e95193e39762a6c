// Package logo implements the logo discovery engine: a bounded crawl of a
// company website, candidate extraction from HTML, heuristic scoring, and a
// download fallback chain that returns the first candidate whose bytes
// validate as an image.
package logo
