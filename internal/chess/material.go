package chess

import (
	"fmt"
	"math/bits"
	"strings"
)

// MaterialKey is a canonical encoding of the multiset of pieces on the
// board: five bits of count per color and piece type, independent of where
// the pieces stand. Two positions have equal keys iff they hold exactly the
// same material.
type MaterialKey uint64

func materialShift(c Color, pt PieceType) uint {
	return uint(int(c)*6+int(pt)) * 5
}

// MaterialKey returns the position's material key.
func (p *Position) MaterialKey() MaterialKey {
	var k MaterialKey
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			n := bits.OnesCount64(uint64(p.byColor[c] & p.byPiece[pt]))
			k |= MaterialKey(n) << materialShift(c, pt)
		}
	}
	return k
}

// ParseMaterial decodes a material signature such as "KBNKP" into a key.
// White's pieces run from the first K up to the second K, which starts
// black's. Both kings are required.
func ParseMaterial(sig string) (MaterialKey, error) {
	var k MaterialKey
	kings := 0
	color := White
	for _, ch := range sig {
		idx := strings.IndexRune(pieceChars, ch)
		if idx < 0 {
			return 0, fmt.Errorf("bad piece %q in material signature %q", ch, sig)
		}
		pt := PieceType(idx)
		if pt == King {
			kings++
			if kings == 2 {
				color = Black
			}
			if kings > 2 {
				return 0, fmt.Errorf("too many kings in material signature %q", sig)
			}
		}
		shift := materialShift(color, pt)
		k += MaterialKey(1) << shift
	}
	if kings != 2 {
		return 0, fmt.Errorf("material signature %q needs two kings", sig)
	}
	return k, nil
}
