package services

import (
	"strings"

	"rooms-aggregator/models"
)

// roomKeywords maps each room type to lower-case substrings that identify it in a
// listing title. The table is shared by every source.
var roomKeywords = map[models.RoomType][]string{
	models.RoomSingle: {
		"jednoosobowy", "jednoosobowe", "1-osobowy", "1 osobowy", "1-os", "single", "dla jednej",
	},
	models.RoomShared: {
		"dwuosobowy", "dwuosobowe", "2-osobowy", "2 osobowy", "wieloosobowy", "współdzielony",
		"dla dwóch", "dla dwojga", "shared", "double",
	},
	models.RoomStudio: {
		"kawalerka", "kawalerkę", "studio", "garsoniera",
	},
	models.RoomApartment: {
		"mieszkanie", "apartament", "apartment", "flat",
	},
}

// Keywords returns the keyword set for a room type.
func Keywords(rt models.RoomType) []string {
	return roomKeywords[rt]
}

// Classify reports whether the lower-cased title contains at least one keyword of rt.
func Classify(title string, rt models.RoomType) bool {
	lower := strings.ToLower(title)
	for _, kw := range roomKeywords[rt] {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// InferRoomType returns the first room type whose keywords match the title, or "".
func InferRoomType(title string) models.RoomType {
	for _, rt := range models.RoomTypes {
		if Classify(title, rt) {
			return rt
		}
	}
	return ""
}
