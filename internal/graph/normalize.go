package graph

import (
	"log/slog"
	"net/url"
	"slices"
)

// normalizeCollection applies quirk handling to a fully paginated collection:
// 1. URL-decode item names (Graph API sometimes returns %20-encoded names)
// 2. Deduplicate items that appear on more than one page (keep last occurrence)
func normalizeCollection(items []Item, logger *slog.Logger) []Item {
	items = decodeURLEncodedNames(items, logger)
	items = deduplicateItems(items, logger)

	return items
}

// deduplicateItems removes duplicate item IDs, keeping only the last occurrence.
// A folder that changes while its children are being paged can return the
// same item on two pages; only the final state matters.
func deduplicateItems(items []Item, logger *slog.Logger) []Item {
	if len(items) == 0 {
		return items
	}

	reversed := make([]Item, len(items))
	copy(reversed, items)
	slices.Reverse(reversed)

	seen := make(map[string]bool, len(reversed))
	kept := make([]Item, 0, len(reversed))

	for i := range reversed {
		if seen[reversed[i].ID] {
			logger.Debug("deduplicating item, keeping later occurrence",
				slog.String("item_id", reversed[i].ID),
				slog.String("name", reversed[i].Name),
			)

			continue
		}

		seen[reversed[i].ID] = true
		kept = append(kept, reversed[i])
	}

	slices.Reverse(kept)

	if dupes := len(items) - len(kept); dupes > 0 {
		logger.Info("deduplicated items across pages",
			slog.Int("duplicate_count", dupes),
			slog.Int("remaining_count", len(kept)),
		)
	}

	return kept
}

// decodeURLEncodedNames applies url.PathUnescape to item names.
// The Graph API sometimes returns URL-encoded names (e.g., "my%20file.txt"),
// particularly for items in shared folders.
func decodeURLEncodedNames(items []Item, logger *slog.Logger) []Item {
	decoded := 0

	for i := range items {
		name := decodeName(items[i].ID, items[i].Name, logger)
		if name != items[i].Name {
			items[i].Name = name
			decoded++
		}
	}

	if decoded > 0 {
		logger.Debug("URL-decoded item names",
			slog.Int("decoded_count", decoded),
		)
	}

	return items
}

// decodeName returns the unescaped form of name, or name unchanged when it
// is not valid percent-encoding.
func decodeName(itemID, name string, logger *slog.Logger) string {
	unescaped, err := url.PathUnescape(name)
	if err != nil {
		logger.Debug("failed to URL-decode item name, keeping original",
			slog.String("item_id", itemID),
			slog.String("name", name),
			slog.String("error", err.Error()),
		)

		return name
	}

	return unescaped
}
