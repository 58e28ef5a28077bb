// Package types defines the persisted wallpaper cycle model (Config,
// CurrentWallpaper, TimeConfig) and the error taxonomy shared by the dw
// store, navigator, applier, and scheduler.
package types
