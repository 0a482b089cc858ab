package stores

import "errors"

var (
	ErrInvalidTheme    = errors.New("invalid theme")
	ErrInvalidLanguage = errors.New("invalid language tag")
	ErrInvalidFontSize = errors.New("font size out of range")
	ErrEmptyToken      = errors.New("empty access token")
	ErrEmptyNickname   = errors.New("empty nickname")
	ErrNoNovel         = errors.New("no novel in progress")
	ErrNoVolume        = errors.New("no volume selected")
	ErrNoChapter       = errors.New("no chapter selected")
	ErrUnknownVolume   = errors.New("unknown volume")
	ErrUnknownChapter  = errors.New("unknown chapter")
)
