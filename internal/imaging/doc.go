// Package imaging downloads product images and prepares them for chat delivery.
//
// A Processor fetches the image bytes, refuses HTML served in place of an
// image, decodes JPEG, PNG and GIF, applies the EXIF orientation, flattens
// transparency onto white, stamps a near-white 2x2 patch at the bottom-right
// corner and re-encodes the result as JPEG.
package imaging
