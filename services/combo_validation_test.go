package services

import (
	"testing"

	"streetkitchen/models"
)

func TestValidateCustomCombo(t *testing.T) {
	rules := []models.ComboRule{
		rule(1, 1, "Idli", 4, "10"),
		rule(2, 2, "Sambar", 1, "0"),
	}
	tests := []struct {
		name  string
		items []models.CustomComboItem
		want  []string
	}{
		{
			name: "all met",
			items: []models.CustomComboItem{
				{MenuItemID: 1, Quantity: 4},
				{MenuItemID: 2, Quantity: 1},
			},
		},
		{
			name:  "required item missing entirely",
			items: []models.CustomComboItem{{MenuItemID: 1, Quantity: 5}},
			want:  []string{"Sambar requires at least 1, but got 0."},
		},
		{
			name: "every violation reported",
			items: []models.CustomComboItem{
				{MenuItemID: 1, Quantity: 2},
				{MenuItemID: 3, Quantity: 1},
			},
			want: []string{
				"Idli requires at least 4, but got 2.",
				"Sambar requires at least 1, but got 0.",
			},
		},
		{
			name: "split lines of the same item add up",
			items: []models.CustomComboItem{
				{MenuItemID: 1, Quantity: 2},
				{MenuItemID: 1, Quantity: 2},
				{MenuItemID: 2, Quantity: 1},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateCustomCombo(tt.items, rules)
			if len(got) != len(tt.want) {
				t.Fatalf("ValidateCustomCombo = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("violation %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestValidateCustomComboSkipsInactiveRules(t *testing.T) {
	r := rule(1, 1, "Idli", 4, "10")
	r.IsActive = false
	if got := ValidateCustomCombo(nil, []models.ComboRule{r}); len(got) != 0 {
		t.Errorf("inactive rule produced violations: %q", got)
	}
}

func TestCustomComboTotal(t *testing.T) {
	c := &models.CustomCombo{Items: []models.CustomComboItem{
		{MenuItemID: 1, Price: dec("10"), Quantity: 4},
		{MenuItemID: 2, Price: dec("20.50"), Quantity: 1},
	}}
	if got := c.Total(); !got.Equal(dec("60.50")) {
		t.Errorf("Total() = %s, want 60.50", got)
	}
}
