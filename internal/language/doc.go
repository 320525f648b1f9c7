// Package language maps the 3-letter ISO 639-2 language tags carried by
// Blu-ray stream attributes to display names and 2-letter codes.
package language
