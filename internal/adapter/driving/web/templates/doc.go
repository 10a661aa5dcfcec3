// Package templates holds the shared page shell for the HTML endpoints.
// The *_templ.go files are generated from the .templ sources; run
// "go tool templ generate" after editing them.
package templates

//go:generate go tool templ generate -path .
