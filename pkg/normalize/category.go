package normalize

// Category is the closed set of clothing categories shown in the UI.
type Category string

const (
	CategoryTop    Category = "TOP"
	CategoryBottom Category = "BOTTOM"
	CategoryOuter  Category = "OUTER"
	CategoryDress  Category = "DRESS"
	CategoryOther  Category = "ETC"
)

// ParseCategory maps v onto a known category; unknown values become CategoryOther.
func ParseCategory(v any) Category {
	s, _ := v.(string)
	switch Category(s) {
	case CategoryTop:
		return CategoryTop
	case CategoryBottom:
		return CategoryBottom
	case CategoryOuter:
		return CategoryOuter
	case CategoryDress:
		return CategoryDress
	default:
		return CategoryOther
	}
}

// Label is the display name of the category.
func (c Category) Label() string {
	switch c {
	case CategoryTop:
		return "Tops"
	case CategoryBottom:
		return "Bottoms"
	case CategoryOuter:
		return "Outerwear"
	case CategoryDress:
		return "Dresses"
	default:
		return "Other"
	}
}
