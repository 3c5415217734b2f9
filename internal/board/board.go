package board

// Mark is a single cell value: X, O, or empty.
type Mark string

const (
	MarkX Mark = "X"
	MarkO Mark = "O"
	Empty Mark = ""
)

// Other returns the opposing mark. The empty mark has no opponent.
func (m Mark) Other() Mark {
	switch m {
	case MarkX:
		return MarkO
	case MarkO:
		return MarkX
	}
	return Empty
}

// Board is the 3x3 grid, indexed 0-8:
//
//	0 | 1 | 2
//	---------
//	3 | 4 | 5
//	---------
//	6 | 7 | 8
type Board [9]Mark

// triples are the 8 winning lines, evaluated in this fixed order.
var triples = [8][3]int{
	{0, 1, 2}, // top row
	{3, 4, 5}, // middle row
	{6, 7, 8}, // bottom row
	{0, 3, 6}, // left column
	{1, 4, 7}, // middle column
	{2, 5, 8}, // right column
	{0, 4, 8}, // diagonal
	{2, 4, 6}, // anti-diagonal
}

// IsPositionAvailable reports whether pos is on the board and empty.
func IsPositionAvailable(b Board, pos int) bool {
	return pos >= 0 && pos <= 8 && b[pos] == Empty
}

// Winner returns the mark holding a completed line, or Empty if none.
// Triples are scanned in a fixed order; a legal game can complete at
// most one new line per move, so the first match is the only match.
func Winner(b Board) Mark {
	for _, t := range triples {
		if b[t[0]] != Empty && b[t[0]] == b[t[1]] && b[t[1]] == b[t[2]] {
			return b[t[0]]
		}
	}
	return Empty
}

// Full reports whether no empty cell remains.
func Full(b Board) bool {
	for _, cell := range b {
		if cell == Empty {
			return false
		}
	}
	return true
}

// AvailablePositions returns the indexes of all empty cells, ascending.
func AvailablePositions(b Board) []int {
	positions := make([]int, 0, 9)
	for i, cell := range b {
		if cell == Empty {
			positions = append(positions, i)
		}
	}
	return positions
}
