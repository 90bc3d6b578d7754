package mark

import "github.com/cockroachdb/errors"

// Wrap marks err with a reference error so callers can branch with
// errors.Is / markers.Is, then adds msg as context.
func Wrap(err error, mark error, msg string) error {
	markedErr := errors.Mark(err, mark)
	return errors.Wrap(markedErr, msg)
}

func Wrapf(err error, mark error, format string, args ...any) error {
	markedErr := errors.Mark(err, mark)
	return errors.Wrapf(markedErr, format, args...)
}

func Message(mark error, msg string) error {
	err := errors.New(msg)
	return errors.Mark(err, mark)
}

func Messagef(mark error, format string, args ...any) error {
	err := errors.Newf(format, args...)
	return errors.Mark(err, mark)
}
