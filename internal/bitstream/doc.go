// Package bitstream provides an MSB-first bit cursor over a packed bit
// sequence, and the hex decoding that produces one.
//
// A Cursor reads unsigned bit fields of up to 64 bits. Reads never truncate:
// asking for more bits than remain fails with ErrUnderflow and leaves the
// read position where it was. Sub returns a bounded cursor over the next n
// bits that shares the parent's storage, which lets a caller decode a
// length-prefixed region and detect overruns of that region.
//
// # Usage Example
//
//	c, err := bitstream.FromHex("D2FE28")
//	if err != nil {
//	    return err
//	}
//	version, _ := c.Read(3) // 6
//	typeID, _ := c.Read(3)  // 4
//
// A Cursor has a single owner and is not safe for concurrent use.
package bitstream
