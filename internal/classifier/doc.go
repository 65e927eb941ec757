// Package classifier runs the screenshot classification pipeline.
//
// In OCR mode an image flows through four stages: text recognition, prompt
// rendering, completion, and label mapping. Vision mode replaces the first two
// stages with a resize and sends the image itself to a vision-capable model.
//
// A failure at any stage stops the pipeline. The returned Result then has
// Classified=false and the error carries a services marker describing the
// failure class. Images without recognizable text are labelled NOT_CHAT
// without consulting the model.
package classifier
