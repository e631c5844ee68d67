package telegram

import (
	"fmt"
	"strings"

	"github.com/yourusername/realtor-intake-bot/internal/domain/entity"
)

// renderListingCard formats one apartment as a chat card.
func renderListingCard(item entity.Listing) string {
	var b strings.Builder

	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = fmt.Sprintf("Квартира №%d", item.ID)
	}
	b.WriteString("🏠 ")
	b.WriteString(title)
	b.WriteString("\n")

	if item.Rooms > 0 {
		fmt.Fprintf(&b, "Кімнат: %d\n", item.Rooms)
	}
	if item.AreaTotal > 0 {
		fmt.Fprintf(&b, "Площа: %.0f м²\n", item.AreaTotal)
	}
	if item.Address != "" {
		fmt.Fprintf(&b, "Адреса: %s\n", item.Address)
	}
	if item.Price > 0 {
		fmt.Fprintf(&b, "💰 %d грн\n", item.Price)
	}
	if item.URL != "" {
		b.WriteString(item.URL)
	}

	return strings.TrimRight(b.String(), "\n")
}

// extraOffersMessage teases the remaining matches after one page.
func extraOffersMessage(total, shown int) string {
	remaining := total - shown
	if remaining <= 0 {
		return ""
	}
	return fmt.Sprintf("Є ще %d варіантів за вашими критеріями. Напишіть «ще», щоб побачити наступні.", remaining)
}

// firstPhotoURL returns the first usable photo, made absolute against
// the media base when the API returns bare paths.
func firstPhotoURL(item entity.Listing, mediaBase string) string {
	for _, photo := range item.Photos {
		if url := cleanMediaURL(photo, mediaBase); url != "" {
			return url
		}
	}
	return ""
}

// cleanMediaURL trims wrapping junk the upstream feed is known to emit
// (quotes, brackets, backslashes, zero-width characters) and
// absolutizes relative paths.
func cleanMediaURL(raw, mediaBase string) string {
	s := strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\ufeff':
			return -1
		}
		return r
	}, raw)
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'[]`)
	s = strings.ReplaceAll(s, `\`, "")
	if s == "" {
		return ""
	}

	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s
	}
	if strings.HasPrefix(s, "//") {
		return "https:" + s
	}
	if mediaBase != "" {
		return strings.TrimRight(mediaBase, "/") + "/" + strings.TrimLeft(s, "/")
	}
	return ""
}
