// Package cerr builds errors that carry structured fields along with the
// message, so that whoever finally logs the error gets the whole context.
package cerr

import (
	"fmt"
	"maps"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
)

type F map[string]any

type ErrCtx struct {
	fields F
}

func Field(key string, value any) ErrCtx {
	return ErrCtx{}.Field(key, value)
}

func Fields(fields F) ErrCtx {
	return ErrCtx{}.Fields(fields)
}

func Wrap(err error) ErrWrap {
	return ErrCtx{}.Wrap(err)
}

func Error(msg string) error {
	return ErrCtx{}.Error(msg)
}

func (e ErrCtx) Field(key string, value any) ErrCtx {
	return e.Fields(F{key: value})
}

func (e ErrCtx) Fields(fields F) ErrCtx {
	merged := make(F, len(e.fields)+len(fields))
	maps.Copy(merged, e.fields)
	maps.Copy(merged, fields)
	return ErrCtx{fields: merged}
}

func (e ErrCtx) Wrap(err error) ErrWrap {
	return ErrWrap{ctx: e, cause: err}
}

func (e ErrCtx) Error(msg string) error {
	return e.attach(errors.NewWithDepth(1, msg))
}

func (e ErrCtx) attach(err error) error {
	if len(e.fields) == 0 {
		return err
	}

	return &fieldsError{cause: err, fields: e.fields}
}

type ErrWrap struct {
	ctx   ErrCtx
	cause error
}

func (w ErrWrap) Error(msg string) error {
	if w.cause == nil {
		return w.ctx.attach(errors.NewWithDepth(1, msg))
	}

	return w.ctx.attach(errors.WrapWithDepth(1, w.cause, msg))
}

type fieldsError struct {
	cause  error
	fields F
}

func (f *fieldsError) Error() string { return f.cause.Error() }
func (f *fieldsError) Unwrap() error { return f.cause }

func (f *fieldsError) Format(s fmt.State, verb rune) { errors.FormatError(f, s, verb) }

// CollectFields merges the fields of every layer of err, outer layers
// winning over inner ones
func CollectFields(err error) F {
	collected := F{}
	var layers []*fieldsError

	for current := err; current != nil; current = errors.UnwrapOnce(current) {
		if withFields, ok := current.(*fieldsError); ok {
			layers = append(layers, withFields)
		}
	}

	for i := len(layers) - 1; i >= 0; i-- {
		maps.Copy(collected, layers[i].fields)
	}

	return collected
}

func Log(err error) {
	if err == nil {
		return
	}

	log.WithFields(log.Fields(CollectFields(err))).
		WithField("stack", fmt.Sprintf("%+v", err)).
		Error(err.Error())
}
