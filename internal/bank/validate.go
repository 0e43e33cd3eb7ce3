package bank

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/abhisek/qbank/internal/question"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

// custom validation tags
const (
	notBlankTag      = "notblank"
	needOptionsTag   = "need_options"
	singleCorrectTag = "single_correct"
	noOptionsTag     = "no_options"
	noChildrenTag    = "no_children"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	validate.RegisterStructValidation(questionStructValidation, question.Question{})
	validate.RegisterStructValidation(childStructValidation, question.Child{})

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, needOptionsTag, singleCorrectTag, noOptionsTag, noChildrenTag} {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return "this field cannot be blank"
	case needOptionsTag:
		return "an MCQ needs at least one option"
	case singleCorrectTag:
		return "at most one option can be correct"
	case noOptionsTag:
		return "only MCQs have options"
	case noChildrenTag:
		return "only passages have child questions"
	default:
		return fe.Error()
	}
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func questionStructValidation(sl validator.StructLevel) {
	q, ok := sl.Current().Interface().(question.Question)
	if !ok {
		return
	}
	checkOptions(sl, q.Kind, q.Options)
	if q.Kind != question.KindPassage && len(q.Children) > 0 {
		sl.ReportError(q.Children, "children", "Children", noChildrenTag, "")
	}
}

func childStructValidation(sl validator.StructLevel) {
	c, ok := sl.Current().Interface().(question.Child)
	if !ok {
		return
	}
	checkOptions(sl, c.Kind, c.Options)
}

func checkOptions(sl validator.StructLevel, kind question.Kind, opts question.Options) {
	switch kind {
	case question.KindMCQ:
		if len(opts) == 0 {
			sl.ReportError(opts, "options", "Options", needOptionsTag, "")
		} else if opts.CorrectCount() > 1 {
			sl.ReportError(opts, "options", "Options", singleCorrectTag, "")
		}
	default:
		if len(opts) > 0 {
			sl.ReportError(opts, "options", "Options", noOptionsTag, "")
		}
	}
}

// check runs the struct rules and converts failures to field errors.
func check(q question.Question) []FieldError {
	var fields []FieldError

	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return []FieldError{{Field: "question", Error: err.Error()}}
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{
				Field: fieldPath(fe.Namespace()),
				Error: fe.Translate(translator),
			})
		}
	}

	if err := q.Classification.Validate(); err != nil {
		fields = append(fields, FieldError{Field: "classification", Error: err.Error()})
	}
	return fields
}

// fieldPath drops the root struct name: "Question.children[1].options"
// becomes "children[1].options".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
