package atlas

import "image"

// EraseDeadRegions clears the cells the canonical layout never samples.
// wasSquare is the shape of the atlas before remapping.
func EraseDeadRegions(img *image.NRGBA, f Format, wasSquare bool, variant LimbVariant) {
	for _, r := range DeadRegions(f, wasSquare, variant) {
		clearRect(img, r)
	}
}
