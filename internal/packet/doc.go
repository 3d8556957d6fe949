// Package packet decodes the nested, bit-packed packet format and evaluates
// the decoded tree.
//
// # Wire Format
//
// Every packet starts with a 6-bit header:
//   - Version: 3 bits
//   - Type ID: 3 bits (4 = literal, anything else = operator)
//
// A literal payload is a chain of 5-bit groups. The high bit of each group is
// a continuation flag (1 = another group follows) and the low 4 bits are the
// next nibble of the value, most significant nibble first.
//
// An operator payload starts with a 1-bit length type:
//   - 0: a 15-bit count of bits occupied by the children, which follow
//   - 1: an 11-bit count of children, which follow
//
// A transmission is a sequence of top-level packets followed by padding. The
// parser stops once fewer than MinPacketBits remain.
//
// # Operators
//
//	0 sum   1 product   2 min   3 max   5 gt   6 lt   7 eq
//
// Comparison operators yield 1 or 0 and take exactly two children.
//
// # Usage Example
//
//	res, err := packet.Solve("9C0141080250320F1802104A08")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.VersionSum, res.Value) // 20 1
//
// Decoding and evaluation are pure: nothing in this package logs, retries or
// keeps state between calls.
package packet
