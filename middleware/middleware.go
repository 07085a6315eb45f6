// Package middleware decodes HTTP request bodies with wirecodec. The body's
// format is chosen from the request's Content-Type; decode failures are
// answered with 400 and an issues document in the same format.
package middleware

import (
	"context"
	"errors"
	"mime"
	"net/http"

	wc "github.com/reoring/wirecodec"
	"github.com/reoring/wirecodec/source/json"
)

// ctxKeyDecoded is a typed context key for a decoded body of type T.
type ctxKeyDecoded[T any] struct{}

// ContextWithDecoded attaches a decoded body to the context.
func ContextWithDecoded[T any](ctx context.Context, v *T) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded[T]{}, v)
}

// DecodedFromContext retrieves the body stored by ContextWithDecoded.
func DecodedFromContext[T any](ctx context.Context) (*T, bool) {
	v, ok := ctx.Value(ctxKeyDecoded[T]{}).(*T)
	return v, ok
}

// DefaultDecodeOpt is the recommended setting at an HTTP boundary: strict
// decoding, duplicate keys rejected and bodies capped at 1 MiB.
func DefaultDecodeOpt() wc.DecodeOpt {
	return wc.DecodeOpt{Mode: wc.Strict, OnDuplicateKey: wc.Error, MaxBytes: 1 << 20}
}

// ErrUnsupportedMediaType is returned when no format matches Content-Type.
var ErrUnsupportedMediaType = errors.New("middleware: unsupported media type")

// FormatFor picks the format whose content type matches contentType. An
// empty contentType selects the first format.
func FormatFor(contentType string, formats []wc.Format) (wc.Format, error) {
	if len(formats) == 0 {
		return nil, ErrUnsupportedMediaType
	}
	if contentType == "" {
		return formats[0], nil
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, ErrUnsupportedMediaType
	}
	for _, f := range formats {
		if f.ContentType() == mt {
			return f, nil
		}
	}
	return nil, ErrUnsupportedMediaType
}

// Decode decodes the body of r into a new T.
func Decode[T any, PT interface {
	*T
	wc.Unmarshaler
}](r *http.Request, formats []wc.Format, opt wc.DecodeOpt) (*T, wc.Format, error) {
	f, err := FormatFor(r.Header.Get("Content-Type"), formats)
	if err != nil {
		return nil, nil, err
	}
	v := new(T)
	if err := wc.UnmarshalFrom(f, r.Body, opt, PT(v)); err != nil {
		return nil, f, err
	}
	return v, f, nil
}

// ErrorPayload shapes issues as the wire value {"issues": [...]}.
func ErrorPayload(issues wc.Issues) *wc.Map {
	list := make([]any, 0, len(issues))
	for _, is := range issues {
		e := wc.NewMap(4).Set("path", is.Path).Set("code", is.Code).Set("message", is.Message)
		if is.Hint != "" {
			e.Set("hint", is.Hint)
		}
		list = append(list, e)
	}
	return wc.NewMap(1).Set("issues", list)
}

// Failure returns the status code and body answering a failed Decode. The
// body is rendered in f, or in JSON when the format is unknown.
func Failure(f wc.Format, err error) (status int, contentType string, body []byte) {
	if f == nil {
		f = json.Format
	}
	status = http.StatusBadRequest
	if errors.Is(err, ErrUnsupportedMediaType) {
		status = http.StatusUnsupportedMediaType
	}
	body, merr := f.Marshal(ErrorPayload(wc.ToIssues(err)))
	if merr != nil {
		return http.StatusInternalServerError, "text/plain; charset=utf-8", []byte(merr.Error())
	}
	return status, f.ContentType(), body
}

// Validate decodes each request body into a T before calling next, which
// reads it back with DecodedFromContext. Failed requests never reach next.
func Validate[T any, PT interface {
	*T
	wc.Unmarshaler
}](next http.Handler, formats []wc.Format, opt wc.DecodeOpt) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, f, err := Decode[T, PT](r, formats, opt)
		if err != nil {
			status, ct, body := Failure(f, err)
			w.Header().Set("Content-Type", ct)
			w.WriteHeader(status)
			_, _ = w.Write(body)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithDecoded(r.Context(), v)))
	})
}
