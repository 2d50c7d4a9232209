package did

import "math/big"

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var base58Radix = big.NewInt(58)

// encodeBase58 encodes b with the bitcoin base58 alphabet. Leading
// zero bytes map to leading 1 characters.
func encodeBase58(b []byte) string {
	x := new(big.Int).SetBytes(b)
	mod := new(big.Int)

	out := make([]byte, 0, len(b)*2)
	for x.Sign() > 0 {
		x.DivMod(x, base58Radix, mod)
		out = append(out, base58Alphabet[mod.Int64()])
	}

	for _, c := range b {
		if c != 0 {
			break
		}
		out = append(out, base58Alphabet[0])
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	return string(out)
}
