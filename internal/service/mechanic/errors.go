package mechanic

import "errors"

var (
	ErrNotFound      = errors.New("mechanic not found")
	ErrEmailTaken    = errors.New("email is already used by another mechanic")
	ErrPhotoTooLarge = errors.New("photo exceeds the size limit")
	ErrPhotoStorage  = errors.New("photo storage is not configured")
)
