package dialogue

import (
	"strings"
	"unicode"
)

type CategoryKind int

const (
	NotFoodRelated CategoryKind = iota
	ContextualFollowup
	FoodGeneralized
	Dish
)

func (k CategoryKind) String() string {
	switch k {
	case ContextualFollowup:
		return "CONTEXTUAL_FOLLOWUP"
	case FoodGeneralized:
		return "FOOD_GENERALIZED"
	case Dish:
		return "DISH"
	default:
		return "NOT_FOOD_RELATED"
	}
}

// Category is the classifier verdict. Term is set only for Dish.
type Category struct {
	Kind CategoryKind
	Term string
}

func (c Category) NeedsRetrieval() bool {
	return c.Kind == Dish && c.Term != ""
}

func (c Category) String() string {
	if c.Kind == Dish {
		return "DISH(" + c.Term + ")"
	}

	return c.Kind.String()
}

var categoryLabels = map[string]CategoryKind{
	"not food related":              NotFoodRelated,
	"not_food_related":              NotFoodRelated,
	"respond based on chat history": ContextualFollowup,
	"contextual_followup":           ContextualFollowup,
	"contextual followup":           ContextualFollowup,
	"food generalized":              FoodGeneralized,
	"food_generalized":              FoodGeneralized,
}

// ParseCategory maps free-form classifier output onto a Category. Anything
// that is neither a known label nor a usable term is treated as not food
// related so that a misbehaving classifier can never trigger retrieval.
func ParseCategory(raw string) Category {
	text := cleanClassifierOutput(raw)
	if text == "" {
		return Category{Kind: NotFoodRelated}
	}

	if kind, ok := categoryLabels[strings.ToLower(text)]; ok {
		return Category{Kind: kind}
	}

	// Labels sometimes come back with an explanation appended.
	lower := strings.ToLower(text)
	for label, kind := range categoryLabels {
		if strings.HasPrefix(lower, label) {
			return Category{Kind: kind}
		}
	}

	if strings.Contains(text, "\n") {
		return Category{Kind: NotFoodRelated}
	}

	term := strings.Join(strings.Fields(text), " ")
	if len([]rune(term)) > maxTermLength {
		return Category{Kind: NotFoodRelated}
	}

	return Category{Kind: Dish, Term: term}
}

const maxTermLength = 80

func cleanClassifierOutput(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.Trim(text, "`")
	text = strings.TrimSpace(text)

	return strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}
