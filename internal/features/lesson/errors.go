package lesson

import "errors"

var (
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrTitleRequired   = errors.New("lesson title is required")
	ErrInvalidVideoURL = errors.New("video url must point to YouTube")
)
