// Package language normalizes the OCR language hints sent to Yandex Vision.
//
// The recognizer expects ISO 639-1 codes. Configuration may name languages by
// ISO 639-2 code or English word ("rus", "russian"); NormalizeList maps those
// to the two-letter form, keeps "*" (auto-detect) and drops duplicates.
package language
