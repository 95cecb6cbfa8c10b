// Package services implements the driving port interfaces.
// Services contain the core pipeline logic - change detection, message
// rendering, delivery and watermark bookkeeping - and orchestrate calls
// to driven ports (adapters).
package services
