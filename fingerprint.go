package smartspread

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"strconv"
)

// fingerprint computes a deterministic digest of a table's content, used to
// skip writes when the in-memory data matches what was last read or written.
// Tables that are element-wise equal hash equal regardless of which shape
// they passed through; any single cell difference changes the digest. Cells
// are serialized kind-tagged and length-prefixed straight into the digest,
// so non-finite floats and arbitrary text bytes hash like any other value.
// Int and float cells holding the same number render to the same numeric
// string and hash identically. This is a local cache-invalidation device,
// not a consistency mechanism.
func fingerprint(t *Table) string {
	if t == nil {
		return ""
	}

	h := md5.New()
	field := func(s string) {
		var size [8]byte
		binary.BigEndian.PutUint64(size[:], uint64(len(s)))
		h.Write(size[:])
		h.Write([]byte(s))
	}

	// The column count disambiguates header fields from cell fields.
	field(strconv.Itoa(len(t.Columns)))
	for _, col := range t.Columns {
		field(col)
	}
	for _, row := range t.Rows {
		for _, cell := range row {
			switch cell.kind {
			case KindNull:
				field("z")
			case KindInt:
				field("n" + strconv.FormatInt(cell.i, 10))
			case KindFloat:
				field("n" + strconv.FormatFloat(cell.f, 'g', -1, 64))
			case KindBool:
				field("b" + strconv.FormatBool(cell.b))
			default:
				field("s" + cell.s)
			}
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}
