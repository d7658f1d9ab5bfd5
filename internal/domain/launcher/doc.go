// Package launcher orchestrates the profile lifecycle.
//
// The Manager ties the durable profile store, the partition resolver and
// reaper, and the active-session registry into the operation surface the
// API layer exposes: add, clone, rename, update, reorder, delete, launch,
// quit, clear, and window-state persistence. Windowing and session storage
// stay behind the WindowFactory and SessionGateway interfaces so the whole
// lifecycle runs headless in tests.
package launcher
