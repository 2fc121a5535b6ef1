package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "agency/pkg/domain-errors"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	v.RegisterStructValidation(addOnPriceOrNote, AddOn{})
	return v
}

func addOnPriceOrNote(sl validator.StructLevel) {
	a := sl.Current().Interface().(AddOn)
	if !a.Price.IsSet() && strings.TrimSpace(a.PriceNote) == "" {
		sl.ReportError(a.PriceNote, "PriceNote", "priceNote", "price_or_note", "")
	}
}

// Issue is one schema or consistency finding.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ParseResult is the non-throwing form of Parse.
type ParseResult struct {
	Success bool    `json:"success"`
	Issues  []Issue `json:"issues,omitempty"`
}

// ParseBundle validates the authored shape of b and returns a validation error
// listing every issue. Use it where bad data must stop the caller.
func ParseBundle(b Bundle) error {
	return toError("invalid bundle "+b.Slug, SafeParseBundle(b))
}

// SafeParseBundle validates the authored shape of b without failing.
func SafeParseBundle(b Bundle) ParseResult {
	return toResult(validate.Struct(b))
}

// ParseAddOn validates the authored shape of a.
func ParseAddOn(a AddOn) error {
	return toError("invalid add-on "+a.ID, SafeParseAddOn(a))
}

// SafeParseAddOn validates the authored shape of a without failing.
func SafeParseAddOn(a AddOn) ParseResult {
	return toResult(validate.Struct(a))
}

func toResult(err error) ParseResult {
	if err == nil {
		return ParseResult{Success: true}
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ParseResult{Issues: []Issue{{Message: err.Error()}}}
	}
	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{Path: fieldPath(fe), Message: describe(fe)})
	}
	return ParseResult{Issues: issues}
}

func toError(prefix string, res ParseResult) error {
	if res.Success {
		return nil
	}
	msgs := make([]string, 0, len(res.Issues))
	for _, i := range res.Issues {
		msgs = append(msgs, i.String())
	}
	return dErrors.New(dErrors.CodeValidation, prefix+": "+strings.Join(msgs, "; "))
}

// fieldPath drops the struct name so paths read "includes[0].title".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	return lowerFirst(ns)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "slug":
		return "must be lower-case words separated by hyphens"
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "price_or_note":
		return "either price or priceNote is required"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func lowerFirst(ns string) string {
	parts := strings.Split(ns, ".")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToLower(p[:1]) + p[1:]
	}
	return strings.Join(parts, ".")
}
