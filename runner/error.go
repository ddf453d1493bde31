package runner

import "errors"

var (
	ErrAccessCheckNotFound     = errors.New("access check not found")
	ErrAccessDenied            = errors.New("access denied")
	ErrFolderNotWritable       = errors.New("folder not writable")
	ErrHandlerNotFound         = errors.New("handler not found")
	ErrNoSessionStore          = errors.New("no session store")
	ErrRoutesAlreadyRegistered = errors.New("routes have already been registered")
)
