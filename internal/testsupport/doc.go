// Package testsupport provides shared fixtures for chatshot tests: a complete
// temp-directory configuration, fake OCR and completion endpoints, and small
// encoded images.
package testsupport
