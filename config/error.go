package config

import "errors"

var (
	ErrAlreadyLoaded   = errors.New("config has already been loaded")
	ErrNotLoaded       = errors.New("config has not been loaded")
	ErrParse           = errors.New("unable to parse config file")
	ErrSectionNotFound = errors.New("config section not found")
)
