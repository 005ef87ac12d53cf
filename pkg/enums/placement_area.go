package enums

import "fmt"

// PlacementArea names the garment zone a customization element targets.
type PlacementArea string

const (
	PlacementAreaFront       PlacementArea = "frente"
	PlacementAreaBack        PlacementArea = "espalda"
	PlacementAreaLeftSleeve  PlacementArea = "manga_izquierda"
	PlacementAreaRightSleeve PlacementArea = "manga_derecha"
)

var validPlacementAreas = []PlacementArea{
	PlacementAreaFront,
	PlacementAreaBack,
	PlacementAreaLeftSleeve,
	PlacementAreaRightSleeve,
}

// String implements fmt.Stringer.
func (p PlacementArea) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PlacementArea.
func (p PlacementArea) IsValid() bool {
	for _, candidate := range validPlacementAreas {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlacementArea converts raw input into a PlacementArea.
func ParsePlacementArea(value string) (PlacementArea, error) {
	for _, candidate := range validPlacementAreas {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid placement area %q", value)
}
