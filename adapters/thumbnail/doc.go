// Package thumbnail renders shader preview images.
//
// ChromiumEngine loads a generated standalone page into a shared headless
// Chromium instance, waits for the WebGL canvas to draw, and captures a PNG
// screenshot of the viewport. Cache memoizes previews by page content.
package thumbnail
