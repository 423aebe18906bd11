// Package tags resolves {tag} placeholders in labels and action templates.
package tags

import (
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/dukex/formtrigger/pkg/events"
	"github.com/dukex/formtrigger/pkg/models"
	"github.com/iancoleman/strcase"
)

// FormFieldPrefix prefixes the tags exposing submitted field values.
const FormFieldPrefix = "form_field:"

var placeholder = regexp.MustCompile(`\{([^{}\s][^{}]*)\}`)

// Replace substitutes every {tag} found in values. Unknown tags stay verbatim.
func Replace(text string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(text, func(match string) string {
		name := match[1 : len(match)-1]

		if value, ok := Lookup(values, name); ok {
			return value
		}

		return match
	})
}

// Lookup returns the value of a tag. Form field tags fall back to comparing
// snake_cased field names, so {form_field:First Name} finds "first_name".
// When several fields share a snake_cased name the smallest key wins.
func Lookup(values map[string]string, name string) (string, bool) {
	if value, ok := values[name]; ok {
		return value, true
	}

	field, isField := strings.CutPrefix(name, FormFieldPrefix)
	if !isField {
		return "", false
	}

	wanted := strcase.ToSnake(field)

	for _, key := range slices.Sorted(maps.Keys(values)) {
		candidate, ok := strings.CutPrefix(key, FormFieldPrefix)
		if ok && strcase.ToSnake(candidate) == wanted {
			return values[key], true
		}
	}

	return "", false
}

// ForEvent builds the tag values a dispatched form event offers: every
// submitted field, the post tags and the trigger's times option. The post title
// is the submitted form's title, or the post_label option when the event has none.
func ForEvent(event *events.TriggerEvent, options models.TriggerOptions) map[string]string {
	values := map[string]string{
		"user_id": strconv.FormatInt(event.UserID, 10),
		"times":   strconv.Itoa(options.Times()),
		"post":    PostLabel(options),
	}

	if event.PostID != nil {
		values["post_id"] = strconv.FormatInt(*event.PostID, 10)
	}

	if title := event.PostTitle; title != "" {
		values["post_title"] = title
	} else if title := options.String(models.OptionPostLabel); title != "" {
		values["post_title"] = title
	}

	for name, value := range event.FormFields {
		values[FormFieldPrefix+name] = value
	}

	return values
}

// PostLabel is how a post selector option reads in labels.
func PostLabel(options models.TriggerOptions) string {
	post := strings.TrimSpace(options.String(models.OptionPost))
	if post == "" || post == models.OptionAny {
		return "any form"
	}

	if title := options.String(models.OptionPostLabel); title != "" {
		return title
	}

	return "form #" + post
}
