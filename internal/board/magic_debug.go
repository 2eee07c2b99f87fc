//go:build debug

package board

// verifyMagics re-derives every slider attack from a ray walk and checks it
// against the magic-indexed table, catching a magic multiplier that collides
// on some blocker subset. Only compiled into debug builds; release builds
// trust the hardcoded magic numbers without re-checking at startup.
func verifyMagics() {
	for sq := A1; sq <= H8; sq++ {
		mask := bishopMagics[sq].Mask
		bits := mask.PopCount()
		for i := 0; i < 1<<bits; i++ {
			occ := indexToOccupancy(i, bits, mask)
			want := bishopAttacksSlow(sq, occ)
			if got := getBishopAttacks(sq, occ); got != want {
				panic("board: bishop magic collision at square " + sq.String())
			}
		}
	}
	for sq := A1; sq <= H8; sq++ {
		mask := rookMagics[sq].Mask
		bits := mask.PopCount()
		for i := 0; i < 1<<bits; i++ {
			occ := indexToOccupancy(i, bits, mask)
			want := rookAttacksSlow(sq, occ)
			if got := getRookAttacks(sq, occ); got != want {
				panic("board: rook magic collision at square " + sq.String())
			}
		}
	}
}

func init() {
	verifyMagics()
}
