package googleplaces

import "strings"

// foodRelatedTypes is the set of Google place types that carry cuisine signal.
var foodRelatedTypes = map[string]struct{}{
	"acai_shop": {}, "afghani_restaurant": {}, "african_restaurant": {},
	"american_restaurant": {}, "asian_restaurant": {}, "bagel_shop": {},
	"bakery": {}, "bar": {}, "bar_and_grill": {}, "barbecue_restaurant": {},
	"brazilian_restaurant": {}, "breakfast_restaurant": {}, "brunch_restaurant": {},
	"buffet_restaurant": {}, "cafe": {}, "cafeteria": {}, "candy_store": {},
	"cat_cafe": {}, "chinese_restaurant": {}, "chocolate_factory": {},
	"chocolate_shop": {}, "coffee_shop": {}, "confectionery": {}, "deli": {},
	"dessert_restaurant": {}, "dessert_shop": {}, "diner": {}, "dog_cafe": {},
	"donut_shop": {}, "fast_food_restaurant": {}, "fine_dining_restaurant": {},
	"food_court": {}, "french_restaurant": {}, "greek_restaurant": {},
	"hamburger_restaurant": {}, "ice_cream_shop": {}, "indian_restaurant": {},
	"indonesian_restaurant": {}, "italian_restaurant": {}, "japanese_restaurant": {},
	"juice_shop": {}, "korean_restaurant": {}, "lebanese_restaurant": {},
	"meal_delivery": {}, "meal_takeaway": {}, "mediterranean_restaurant": {},
	"mexican_restaurant": {}, "middle_eastern_restaurant": {}, "pizza_restaurant": {},
	"pub": {}, "ramen_restaurant": {}, "restaurant": {}, "sandwich_shop": {},
	"seafood_restaurant": {}, "spanish_restaurant": {}, "steak_house": {},
	"sushi_restaurant": {}, "tea_house": {}, "thai_restaurant": {},
	"turkish_restaurant": {}, "vegan_restaurant": {}, "vegetarian_restaurant": {},
	"vietnamese_restaurant": {}, "wine_bar": {},
}

// genericTypes only apply when nothing more specific matched.
var genericTypes = map[string]struct{}{
	"restaurant": {}, "meal_delivery": {}, "meal_takeaway": {}, "food": {},
}

// CuisinesFromTypes converts Google place types into readable cuisine names,
// preferring specific types ("italian_restaurant" -> "Italian Restaurant") and
// falling back to a generic "Restaurant" tag when that is all there is.
func CuisinesFromTypes(types []string) []string {
	var cuisines []string
	seen := map[string]struct{}{}
	for _, t := range types {
		if _, generic := genericTypes[t]; generic {
			continue
		}
		if _, ok := foodRelatedTypes[t]; !ok {
			continue
		}
		name := titleCase(t)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		cuisines = append(cuisines, name)
	}

	if len(cuisines) == 0 {
		for _, t := range types {
			if _, ok := genericTypes[t]; ok {
				cuisines = append(cuisines, "Restaurant")
				break
			}
		}
	}
	return cuisines
}

func titleCase(placeType string) string {
	words := strings.Split(placeType, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
