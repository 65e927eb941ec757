// Package textutil normalizes recognized text before it reaches a prompt and
// formats short, single-line snippets of it for logs.
package textutil
