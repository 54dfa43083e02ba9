package services

import (
	"math/rand"
	"sort"
	"strings"

	"streetkitchen/models"

	"github.com/shopspring/decimal"
)

const (
	DefaultMood    = "balanced"
	DefaultProfile = "normal"
)

type Nutrition struct {
	Calories float64 `json:"cal"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

func (n Nutrition) add(o Nutrition, qty int) Nutrition {
	q := float64(qty)
	return Nutrition{
		Calories: n.Calories + o.Calories*q,
		Protein:  n.Protein + o.Protein*q,
		Carbs:    n.Carbs + o.Carbs*q,
		Fat:      n.Fat + o.Fat*q,
		Fiber:    n.Fiber + o.Fiber*q,
	}
}

// nutritionPerServing is keyed by lower-case item name. One idli is about
// 50g, one sambar serving 100ml.
var nutritionPerServing = map[string]Nutrition{
	"idli":                 {Calories: 58, Protein: 2, Carbs: 12, Fat: 0.4, Fiber: 0.7},
	"sambar":               {Calories: 100, Protein: 5, Carbs: 12, Fat: 3, Fiber: 3},
	"coconut chutney":      {Calories: 80, Protein: 1, Carbs: 4, Fat: 7, Fiber: 2},
	"peanut chutney":       {Calories: 90, Protein: 4, Carbs: 5, Fat: 7, Fiber: 2},
	"onion-tomato chutney": {Calories: 50, Protein: 1, Carbs: 8, Fat: 1, Fiber: 2},
}

type portion struct {
	name string
	qty  int
}

var moodCombos = map[string][]portion{
	"light breakfast": {{"Idli", 2}, {"Sambar", 1}, {"Coconut Chutney", 1}},
	"family dinner":   {{"Idli", 6}, {"Sambar", 2}, {"Coconut Chutney", 1}, {"Onion-Tomato Chutney", 1}},
	"quick snack":     {{"Idli", 1}, {"Sambar", 1}},
}

var defaultCombo = []portion{{"Idli", 4}, {"Sambar", 1}}

var profileTips = map[string]string{
	"diabetic":     "Diabetic tip: controlled carbs and extra protein keep sugar stable.",
	"weight loss":  "Weight loss tip: a smaller idli portion and more fiber help satiety.",
	"high protein": "High protein tip: peanut chutney boosts protein for muscle health.",
}

const balancedTip = "Balanced diet: a good mix of carbs, protein and fiber."

// adjustForProfile trims or extends a portion list for a health profile.
func adjustForProfile(items []portion, profile string) []portion {
	out := append([]portion(nil), items...)
	reduceIdli := func(by int) {
		for i := range out {
			if strings.EqualFold(out[i].name, "idli") {
				out[i].qty -= by
				if out[i].qty < 1 {
					out[i].qty = 1
				}
			}
		}
	}
	switch profile {
	case "diabetic":
		reduceIdli(2)
		out = append(out, portion{"Peanut Chutney", 1})
	case "weight loss":
		reduceIdli(1)
		out = append(out, portion{"Onion-Tomato Chutney", 1})
	case "high protein":
		out = append(out, portion{"Peanut Chutney", 2})
	}
	return out
}

// SuggestedItem is one line of a suggestion. MenuItemID is zero when the
// vendor does not sell the item; such lines are not priced.
type SuggestedItem struct {
	MenuItemID int64
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
}

type Suggestion struct {
	Mood      string
	Profile   string
	Items     []SuggestedItem
	Nutrition Nutrition
	Quote     Quote
	Tip       string
}

// SuggestCombo builds the fixed combo for mood, adjusts it for profile and
// prices it against the vendor's menu through Price. Unknown moods fall back
// to four idlis with sambar; unknown profiles get no adjustment.
func SuggestCombo(menu []models.MenuItem, rules []models.ComboRule, policy PricingPolicy, mood, profile string) Suggestion {
	mood = strings.ToLower(strings.TrimSpace(mood))
	if mood == "" {
		mood = DefaultMood
	}
	profile = strings.ToLower(strings.TrimSpace(profile))
	if profile == "" {
		profile = DefaultProfile
	}

	base, ok := moodCombos[mood]
	if !ok {
		base = defaultCombo
	}
	portions := adjustForProfile(base, profile)

	byName := make(map[string]models.MenuItem, len(menu))
	for _, m := range menu {
		if m.IsAvailable {
			byName[strings.ToLower(m.Name)] = m
		}
	}

	s := Suggestion{Mood: mood, Profile: profile, Tip: balancedTip}
	if tip, ok := profileTips[profile]; ok {
		s.Tip = tip
	}
	var lines []PricedLine
	for _, p := range portions {
		key := strings.ToLower(p.name)
		s.Nutrition = s.Nutrition.add(nutritionPerServing[key], p.qty)

		item := SuggestedItem{Name: p.name, Quantity: p.qty, UnitPrice: decimal.Zero}
		if m, ok := byName[key]; ok {
			item.MenuItemID = m.ID
			item.UnitPrice = m.Price
			lines = append(lines, PricedLine{
				Kind:      models.ItemKindMenuItem,
				RefID:     m.ID,
				Name:      m.Name,
				UnitPrice: m.Price,
				Quantity:  p.qty,
			})
		}
		s.Items = append(s.Items, item)
	}
	s.Quote = Price(lines, rules, policy)
	return s
}

// RandomCombo is one item from every menu category, priced.
type RandomCombo struct {
	Items     []models.MenuItem
	Nutrition Nutrition
	Quote     Quote
}

// RandomCombos samples n combos, each holding one random available item per
// category. Categories are visited in sorted order so a seeded rng gives
// repeatable results.
func RandomCombos(menu []models.MenuItem, rules []models.ComboRule, policy PricingPolicy, n int, rng *rand.Rand) []RandomCombo {
	byCategory := make(map[string][]models.MenuItem)
	for _, m := range menu {
		if m.IsAvailable {
			byCategory[m.Category] = append(byCategory[m.Category], m)
		}
	}
	if len(byCategory) == 0 || n <= 0 {
		return nil
	}
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	out := make([]RandomCombo, 0, n)
	for i := 0; i < n; i++ {
		var rc RandomCombo
		var lines []PricedLine
		for _, c := range categories {
			items := byCategory[c]
			m := items[rng.Intn(len(items))]
			rc.Items = append(rc.Items, m)
			rc.Nutrition = rc.Nutrition.add(nutritionPerServing[strings.ToLower(m.Name)], 1)
			lines = append(lines, PricedLine{
				Kind:      models.ItemKindMenuItem,
				RefID:     m.ID,
				Name:      m.Name,
				UnitPrice: m.Price,
				Quantity:  1,
			})
		}
		rc.Quote = Price(lines, rules, policy)
		out = append(out, rc)
	}
	return out
}
