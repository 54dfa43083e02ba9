package services

import (
	"fmt"

	"streetkitchen/models"
)

// ValidateCustomCombo checks the combo's items against every active rule of
// its vendor and returns one message per unmet rule. An empty result means
// the combo may be ordered.
func ValidateCustomCombo(items []models.CustomComboItem, rules []models.ComboRule) []string {
	have := make(map[int64]int, len(items))
	for _, it := range items {
		have[it.MenuItemID] += it.Quantity
	}

	var violations []string
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		qty := have[r.MenuItemID]
		if qty < r.MinQuantity {
			violations = append(violations, fmt.Sprintf(
				"%s requires at least %d, but got %d.", ruleItemName(r), r.MinQuantity, qty,
			))
		}
	}
	return violations
}

func ruleItemName(r models.ComboRule) string {
	if r.MenuItemName != "" {
		return r.MenuItemName
	}
	return fmt.Sprintf("Item #%d", r.MenuItemID)
}
