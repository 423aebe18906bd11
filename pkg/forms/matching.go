package forms

import (
	"strconv"
	"strings"

	"github.com/dukex/formtrigger/pkg/models"
)

// PostMatches reports whether a post id satisfies a post selector option.
// An empty option or "any" matches every post.
func PostMatches(postID int64, option string) bool {
	option = strings.TrimSpace(option)
	if option == "" || option == models.OptionAny {
		return true
	}

	expected, err := strconv.ParseInt(option, 10, 64)
	if err != nil {
		return false
	}

	return expected == postID
}
