package types

import "errors"

// Config file errors.
var (
	ErrConfigNotFound = errors.New("config not found")
	ErrConfigParse    = errors.New("config parse error")
)

// Cycle errors.
var (
	ErrPathNotFound    = errors.New("path not found")
	ErrNotAnImage      = errors.New("not an image")
	ErrEmptyCycle      = errors.New("wallpaper cycle is empty")
	ErrEmptyDirectory  = errors.New("directory contains no images")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Time config errors.
var (
	ErrInvalidPreset   = errors.New("invalid preset")
	ErrInvalidInterval = errors.New("invalid interval")
)

// External command errors.
var (
	ErrSchedulerCommandFailed = errors.New("scheduler command failed")
	ErrApplyCommandFailed     = errors.New("wallpaper command failed")
	ErrUnsupportedPlatform    = errors.New("unsupported platform")
	ErrUnsupportedEnvironment = errors.New("unsupported desktop environment")
)
