package dashboard

import "github.com/yanqian/outfit-calendar/pkg/normalize"

// DonutBasis tells which clicks the category donut counts.
type DonutBasis string

const (
	BasisAllClicks       DonutBasis = "ALL_CLICKS"
	BasisFavoritedClicks DonutBasis = "FAVORITED_CLICKS"
)

// Section narrows the overview payload requested from the backend.
type Section string

const (
	SectionAll      Section = ""
	SectionOverview Section = "OVERVIEW"
	SectionSummary  Section = "SUMMARY"
	SectionFunnel   Section = "FUNNEL"
	SectionCategory Section = "CATEGORY"
	SectionTopItems Section = "TOP_ITEMS"
)

// Query selects the dashboard month.
type Query struct {
	Year    int     `form:"year" json:"year"`
	Month   int     `form:"month" json:"month"`
	Section Section `form:"section" json:"section,omitempty"`
}

// Range is the inclusive date range covered by the overview.
type Range struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Summary holds the headline KPIs. Averages are nil when unknown.
type Summary struct {
	MonthlyOutfitCount   float64  `json:"monthlyOutfitCount"`
	FeedbackCount        float64  `json:"feedbackCount"`
	FeedbackRate         float64  `json:"feedbackRate"`
	MostUsedRecoStrategy *string  `json:"mostUsedRecoStrategy"`
	MostCommonCondition  *string  `json:"mostCommonCondition"`
	AvgTemp              *float64 `json:"avgTemp"`
	AvgFeelsLike         *float64 `json:"avgFeelsLike"`
}

// Funnel counts saved outfits and the feedback given on them.
type Funnel struct {
	Saved    float64 `json:"saved"`
	Feedback float64 `json:"feedback"`
}

// DonutDatum is one slice of the category donut. Ratio is RatioRaw rounded to
// four decimals.
type DonutDatum struct {
	Category normalize.Category `json:"category"`
	Name     string             `json:"name"`
	Value    float64            `json:"value"`
	RatioRaw float64            `json:"ratioRaw"`
	Ratio    float64            `json:"ratio"`
}

// Donut is the category click breakdown.
type Donut struct {
	Basis       DonutBasis   `json:"basis"`
	TotalClicks float64      `json:"totalClicks"`
	Data        []DonutDatum `json:"data"`
}

// TopItem is a ranked clothing item ready for rendering.
type TopItem struct {
	ClothingID int64              `json:"clothingId"`
	Name       string             `json:"name"`
	Category   normalize.Category `json:"category"`
	Count      float64            `json:"count"`
	ImageURL   *string            `json:"imageUrl"`
}

// OverviewUI is the normalized dashboard overview.
type OverviewUI struct {
	Range                    Range     `json:"range"`
	Summary                  Summary   `json:"summary"`
	Funnel                   Funnel    `json:"funnel"`
	Donut                    Donut     `json:"donut"`
	TopClickedItems          []TopItem `json:"topClickedItems"`
	TopFavoritedClickedItems []TopItem `json:"topFavoritedClickedItems"`
}
