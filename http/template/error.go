package template

import "errors"

var (
	ErrInvalidPlugin     = errors.New("invalid plugin")
	ErrRender            = errors.New("unable to render template")
	ErrTemplateDirNotSet = errors.New("template directory has not been set")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrUnknownPluginKind = errors.New("unknown plugin kind")
)
