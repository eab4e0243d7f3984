package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	MsgTitle           = "wishes.title"
	MsgEmpty           = "wishes.empty"
	MsgLoading         = "wishes.loading"
	MsgMalformed       = "wishes.error.malformed"
	MsgTransport       = "wishes.error.transport"
	MsgPaginationLabel = "wishes.pagination.label"
	MsgPrevious        = "wishes.pagination.previous"
	MsgNext            = "wishes.pagination.next"
	MsgPageOf          = "wishes.pagination.page_of"
)

//nolint:gochecknoglobals // Static lookup table.
var (
	supportedLocales = []language.Tag{language.Vietnamese, language.English}
	localeMatcher    = language.NewMatcher(supportedLocales)
)

//nolint:gochecknoglobals // Static translation table.
var translations = map[language.Tag]map[string]string{
	language.Vietnamese: {
		MsgTitle:           "Lời chúc",
		MsgEmpty:           "Chưa có lời chúc nào. Hãy là người đầu tiên gửi lời chúc!",
		MsgLoading:         "Đang tải lời chúc...",
		MsgMalformed:       "Không thể tải lời chúc. Vui lòng thử lại sau.",
		MsgTransport:       "Đã có lỗi xảy ra khi tải lời chúc.",
		MsgPaginationLabel: "Phân trang lời chúc",
		MsgPrevious:        "Trang trước",
		MsgNext:            "Trang sau",
		MsgPageOf:          "Trang %d/%d",
	},
	language.English: {
		MsgTitle:           "Wishes",
		MsgEmpty:           "No wishes yet. Be the first to send one!",
		MsgLoading:         "Loading wishes...",
		MsgMalformed:       "Could not load wishes. Please try again later.",
		MsgTransport:       "Something went wrong while loading wishes.",
		MsgPaginationLabel: "Wishes pagination",
		MsgPrevious:        "Previous",
		MsgNext:            "Next",
		MsgPageOf:          "Page %d of %d",
	},
}

// newCatalog builds the message catalog, falling back to Vietnamese.
func newCatalog() (catalog.Catalog, error) {
	b := catalog.NewBuilder(catalog.Fallback(language.Vietnamese))
	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

// MatchLocale maps a locale string or Accept-Language value onto a supported
// language. Unknown or empty input selects Vietnamese.
func MatchLocale(locale string) language.Tag {
	_, idx := language.MatchStrings(localeMatcher, locale)
	return supportedLocales[idx]
}

// NewPrinter returns a printer for the given locale.
func NewPrinter(locale string) (*message.Printer, error) {
	cat, err := newCatalog()
	if err != nil {
		return nil, err
	}
	return message.NewPrinter(MatchLocale(locale), message.Catalog(cat)), nil
}
