package models

// Category is the closed set of expense categories. Budgets and expenses
// share the same set; there are no user-defined categories.
type Category string

const (
	CategoryFood           Category = "Food"
	CategoryTransportation Category = "Transportation"
	CategoryEntertainment  Category = "Entertainment"
	CategoryShopping       Category = "Shopping"
	CategoryUtilities      Category = "Utilities"
	CategoryHousing        Category = "Housing"
	CategoryHealthcare     Category = "Healthcare"
	CategoryOther          Category = "Other"
)

// Categories lists every valid category, in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTransportation,
	CategoryEntertainment,
	CategoryShopping,
	CategoryUtilities,
	CategoryHousing,
	CategoryHealthcare,
	CategoryOther,
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
