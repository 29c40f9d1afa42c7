package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	appLog "mtgplan/internal/log"
	"mtgplan/internal/tz"
)

const (
	maxRequestBytes = 1 << 20

	// inlineMark tags the namespace segment of an embedded struct.
	inlineMark = "~"
)

type validatorSvc struct {
	validate *validator.Validate
	trans    ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *validatorSvc
)

// validation returns the shared validator with English messages, json tag
// field names and the hhmm/civildate tags.
func validation() *validatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if fld.Anonymous && tag == "" {
				// promoted by encoding/json, so not part of the client's path
				return inlineMark + fld.Name
			}
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			return tz.IsValidTimeShape(fl.Field().String())
		})
		_ = v.RegisterValidation("civildate", func(fl validator.FieldLevel) bool {
			_, err := tz.ParseDate(fl.Field().String())
			return err == nil
		})
		registerMessage(v, trans, "hhmm", "{0} must be a time as HH:mm")
		registerMessage(v, trans, "civildate", "{0} must be a date as yyyy-MM-dd")

		vSvc = &validatorSvc{validate: v, trans: trans}
	})
	return vSvc
}

func registerMessage(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(tag, fe.Field())
			return msg
		},
	)
}

// badRequest carries every message that should reach the client.
type badRequest struct {
	messages []string
}

func (e *badRequest) Error() string { return strings.Join(e.messages, "; ") }

// bindJSON decodes one JSON object into dst and validates it. Failures come
// back as *badRequest.
func bindJSON(r *http.Request, dst any) error {
	defer func() {
		if err := r.Body.Close(); err != nil {
			appLog.Error("failed to close request body", err)
		}
	}()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &badRequest{messages: []string{"empty body"}}
		}
		return &badRequest{messages: []string{"invalid JSON: " + err.Error()}}
	}
	if dec.More() {
		return &badRequest{messages: []string{"unexpected trailing data"}}
	}

	svc := validation()
	if err := svc.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			appLog.Error("validator internal error", err)
			return &badRequest{messages: []string{"validation error"}}
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldPath(fe)+": "+fe.Translate(svc.trans))
		}
		return &badRequest{messages: msgs}
	}
	return nil
}

// fieldPath drops the struct name and embedded structs from a namespace:
// "inviteRequest.~planRequest.candidates[0].start" -> "candidates[0].start".
func fieldPath(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i == 0 && len(parts) > 1 {
			continue
		}
		if strings.HasPrefix(p, inlineMark) {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}

// messages returns one message per error; errors.Join separates its
// members with newlines.
func messages(err error) []string {
	var br *badRequest
	if errors.As(err, &br) {
		return br.messages
	}
	return strings.Split(err.Error(), "\n")
}
