package detector

import (
	"regexp"
	"strings"

	"github.com/Marlvin12/perfit/internal/types"
)

// categoryRules are tested in order; the first matching group wins
var categoryRules = []struct {
	category types.Category
	pattern  *regexp.Regexp
}{
	{types.CategoryOuterwear, regexp.MustCompile(`coat|jacket|blazer|cardigan|sweater|hoodie`)},
	{types.CategoryDress, regexp.MustCompile(`dress|gown|romper|jumpsuit`)},
	{types.CategoryBottom, regexp.MustCompile(`pant|jean|trouser|short|skirt|legging`)},
	{types.CategoryTop, regexp.MustCompile(`shirt|top|blouse|tee|tank|polo|crop`)},
	{types.CategorySwimwear, regexp.MustCompile(`bikini|swimsuit|swim`)},
	{types.CategoryActivewear, regexp.MustCompile(`sport|yoga|gym|workout|athletic`)},
}

// InferCategory classifies a product by keywords in its name
func InferCategory(name string) types.Category {
	lower := strings.ToLower(name)
	for _, rule := range categoryRules {
		if rule.pattern.MatchString(lower) {
			return rule.category
		}
	}
	return types.CategoryUnknown
}
