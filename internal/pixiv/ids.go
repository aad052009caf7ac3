package pixiv

import (
	"regexp"
	"strings"

	"koneko/internal/services"
	"koneko/internal/textutil"
)

var illustIDParam = regexp.MustCompile(`[?&]illust_id=(\d+)`)

// ParseUserID accepts a numeric user id or a profile URL such as
// https://www.pixiv.net/en/users/2232374.
func ParseUserID(input string) (string, error) {
	input = strings.TrimSpace(input)
	id := input
	if strings.Contains(input, "users") {
		id = textutil.LastSegment(strings.TrimRight(input, "/"))
	}
	if !textutil.IsDigits(id) {
		return "", services.Wrap(services.ErrValidation, "pixiv", "parse user id", input, nil)
	}
	return id, nil
}

// ParseArtworkID accepts a numeric illustration id, an artwork URL such as
// https://www.pixiv.net/en/artworks/78823485, or a legacy
// member_illust.php?mode=medium&illust_id=78823485 URL.
func ParseArtworkID(input string) (string, error) {
	input = strings.TrimSpace(input)
	id := input
	switch {
	case strings.Contains(input, "artworks"):
		id = textutil.LastSegment(strings.TrimRight(input, "/"))
		id, _, _ = strings.Cut(id, `\`)
		id, _, _ = strings.Cut(id, "?")
	case strings.Contains(input, "illust_id"):
		if m := illustIDParam.FindStringSubmatch(input); m != nil {
			id = m[1]
		}
	}
	if !textutil.IsDigits(id) {
		return "", services.Wrap(services.ErrValidation, "pixiv", "parse artwork id", input, nil)
	}
	return id, nil
}
