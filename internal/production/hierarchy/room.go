package hierarchy

import (
	"strings"

	"github.com/claudio-nehemia/MoeyProject-sub002/internal/production/entity"
	"golang.org/x/text/cases"
)

// UnnamedRoom labels products without a room.
const UnnamedRoom = "Tanpa Ruangan"

// RoomID is the grouping key of a room label: whitespace-collapsed and
// case-folded, so "Kamar Utama" and " kamar  utama" land in one room.
type RoomID string

var folder = cases.Fold()

// RoomKey derives the RoomID of a label. Blank labels map to "".
func RoomKey(label string) RoomID {
	return RoomID(folder.String(cleanLabel(label)))
}

func cleanLabel(label string) string {
	return strings.Join(strings.Fields(label), " ")
}

// Room is a derived group of products sharing a RoomID.
type Room struct {
	ID       RoomID     `json:"id"`
	Label    string     `json:"label"`
	Products []*Product `json:"products"`
}

// Rooms groups products by RoomID in order of first appearance.
func (s *Store) Rooms() []Room {
	return GroupRooms(s.doc.Products)
}

// GroupRooms groups products by RoomID in order of first appearance.
func GroupRooms(products []*Product) []Room {
	index := make(map[RoomID]int)
	var rooms []Room
	for _, p := range products {
		key := RoomKey(p.RoomLabel)
		i, ok := index[key]
		if !ok {
			label := cleanLabel(p.RoomLabel)
			if label == "" {
				label = UnnamedRoom
			}
			index[key] = len(rooms)
			rooms = append(rooms, Room{ID: key, Label: label})
			i = len(rooms) - 1
		}
		rooms[i].Products = append(rooms[i].Products, p)
	}
	return rooms
}

// RenameRoom relabels every member of a room and returns how many products
// moved. Renaming onto another room's label merges the two.
func (s *Store) RenameRoom(id RoomID, label string) (int, error) {
	label = cleanLabel(label)
	var members []*Product
	for _, p := range s.doc.Products {
		if RoomKey(p.RoomLabel) == id {
			members = append(members, p)
		}
	}
	if len(members) == 0 {
		return 0, entity.Fail(entity.ErrUnknownRoom, string(id))
	}
	for _, p := range members {
		p.RoomLabel = label
	}
	return len(members), nil
}
