package services

import (
	"math/rand"
	"testing"

	"streetkitchen/models"
)

func suggestMenu() []models.MenuItem {
	return []models.MenuItem{
		{ID: 1, VendorID: 1, Name: "Idli", Category: models.CategoryIdli, Price: dec("10"), IsAvailable: true},
		{ID: 2, VendorID: 1, Name: "Sambar", Category: models.CategorySambar, Price: dec("20"), IsAvailable: true},
		{ID: 3, VendorID: 1, Name: "Coconut Chutney", Category: models.CategoryChutney, Price: dec("5"), IsAvailable: true},
		{ID: 4, VendorID: 1, Name: "Peanut Chutney", Category: models.CategoryChutney, Price: dec("8"), IsAvailable: true},
		{ID: 5, VendorID: 1, Name: "Rava Idli", Category: models.CategoryIdli, Price: dec("15"), IsAvailable: false},
	}
}

func qtyOf(s Suggestion, name string) int {
	for _, it := range s.Items {
		if it.Name == name {
			return it.Quantity
		}
	}
	return 0
}

func TestSuggestComboDefaultMood(t *testing.T) {
	s := SuggestCombo(suggestMenu(), []models.ComboRule{rule(1, 1, "Idli", 4, "10")}, DefaultPricingPolicy(), "", "")

	if s.Mood != DefaultMood || s.Profile != DefaultProfile {
		t.Errorf("mood/profile = %q/%q", s.Mood, s.Profile)
	}
	if qtyOf(s, "Idli") != 4 || qtyOf(s, "Sambar") != 1 {
		t.Errorf("items = %+v, want 4 idli + 1 sambar", s.Items)
	}
	if got := s.Quote.TotalPrice.StringFixed(2); got != "77.00" {
		t.Errorf("total = %s, want 77.00", got)
	}
	if s.Nutrition.Calories != 58*4+100 {
		t.Errorf("calories = %v, want %v", s.Nutrition.Calories, 58*4+100)
	}
}

func TestSuggestComboProfiles(t *testing.T) {
	tests := []struct {
		mood, profile string
		idli, peanut  int
		onionTomato   int
		tipIsBalanced bool
	}{
		{"light breakfast", "normal", 2, 0, 0, true},
		{"Family Dinner", "diabetic", 4, 1, 1, false},
		{"quick snack", "diabetic", 1, 1, 0, false},
		{"light breakfast", "weight loss", 1, 0, 1, false},
		{"quick snack", "high protein", 1, 2, 0, false},
	}
	for _, tt := range tests {
		s := SuggestCombo(suggestMenu(), nil, DefaultPricingPolicy(), tt.mood, tt.profile)
		if got := qtyOf(s, "Idli"); got != tt.idli {
			t.Errorf("%s/%s idli = %d, want %d", tt.mood, tt.profile, got, tt.idli)
		}
		if got := qtyOf(s, "Peanut Chutney"); got != tt.peanut {
			t.Errorf("%s/%s peanut = %d, want %d", tt.mood, tt.profile, got, tt.peanut)
		}
		if got := qtyOf(s, "Onion-Tomato Chutney"); got != tt.onionTomato {
			t.Errorf("%s/%s onion-tomato = %d, want %d", tt.mood, tt.profile, got, tt.onionTomato)
		}
		if (s.Tip == balancedTip) != tt.tipIsBalanced {
			t.Errorf("%s/%s tip = %q", tt.mood, tt.profile, s.Tip)
		}
	}
}

func TestSuggestComboSkipsItemsVendorDoesNotSell(t *testing.T) {
	s := SuggestCombo(suggestMenu(), nil, DefaultPricingPolicy(), "family dinner", "normal")
	for _, it := range s.Items {
		if it.Name == "Onion-Tomato Chutney" {
			if it.MenuItemID != 0 || !it.UnitPrice.IsZero() {
				t.Errorf("unsold item priced: %+v", it)
			}
		}
	}
	// 6 idli + 2 sambar + 1 coconut chutney
	if got := s.Quote.Subtotal.StringFixed(2); got != "105.00" {
		t.Errorf("subtotal = %s, want 105.00", got)
	}
	if !s.Quote.Balanced() {
		t.Error("quote not balanced")
	}
}

func TestRandomCombosOnePerCategory(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	combos := RandomCombos(suggestMenu(), nil, DefaultPricingPolicy(), 5, rng)
	if len(combos) != 5 {
		t.Fatalf("combos = %d, want 5", len(combos))
	}
	for i, c := range combos {
		if len(c.Items) != 3 {
			t.Fatalf("combo %d has %d items, want one per category", i, len(c.Items))
		}
		seen := map[string]bool{}
		for _, it := range c.Items {
			if !it.IsAvailable {
				t.Errorf("combo %d picked unavailable %s", i, it.Name)
			}
			if seen[it.Category] {
				t.Errorf("combo %d has two %s items", i, it.Category)
			}
			seen[it.Category] = true
		}
		if !c.Quote.Balanced() {
			t.Errorf("combo %d quote not balanced", i)
		}
	}
}

func TestRandomCombosEmptyMenu(t *testing.T) {
	if got := RandomCombos(nil, nil, DefaultPricingPolicy(), 3, rand.New(rand.NewSource(1))); got != nil {
		t.Errorf("RandomCombos(nil) = %v, want nil", got)
	}
}
