package domain

import (
	"strings"
	"time"
)

// CurrentBoxVersion is the schema version written for every stored box.
// Version 1 records predate the photo/metadata split and may carry the photo
// inline.
const CurrentBoxVersion = 2

type Box struct {
	ID                string    `json:"id"`
	QRCodeValue       string    `json:"qrCodeValue"`
	CreatedAt         time.Time `json:"createdAt"`
	ManualDescription string    `json:"manualDescription,omitempty"`
	AssignedRoom      string    `json:"assignedRoom,omitempty"`
	SuggestedRoom     string    `json:"suggestedRoom,omitempty"`
	AIGeneratedTags   []string  `json:"aiGeneratedTags"`
	PhotoDataURL      string    `json:"photoDataUrl,omitempty"`
	Items             []Item    `json:"items"`
	Version           int       `json:"version"`
}

type Item struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Rooms is the fixed list a box can be assigned to.
var Rooms = []string{
	"Living Room",
	"Kitchen",
	"Dining Room",
	"Master Bedroom",
	"Bedroom 2",
	"Bedroom 3",
	"Bathroom",
	"Office",
	"Garage",
	"Basement",
	"Attic",
	"Laundry Room",
	"Storage",
	"Other",
}

// CanonicalRoom maps name onto an entry of Rooms, ignoring case and
// surrounding whitespace.
func CanonicalRoom(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, r := range Rooms {
		if strings.EqualFold(r, name) {
			return r, true
		}
	}
	return "", false
}

// Matches reports whether query occurs, ignoring case, in the box id,
// description, rooms, tags or item names. An empty query matches every box.
func (b *Box) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	fields := []string{b.ID, b.ManualDescription, b.AssignedRoom, b.SuggestedRoom}
	fields = append(fields, b.AIGeneratedTags...)
	for _, it := range b.Items {
		fields = append(fields, it.Name)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
