// Package sanitizer normalizes user input before validation and storage.
// Functions are plain string transforms that compose with Apply and Compose.
package sanitizer
