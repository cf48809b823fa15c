package hiero

// Entity-id checksum scheme: five base-26 letters derived from the digits of
// "shard.realm.num" and the ledger id, so a mistyped or cross-network id is
// caught client-side before it is ever submitted.
const (
	checksumP3 = 26 * 26 * 26                // 3 digits in base 26
	checksumP5 = 26 * 26 * 26 * 26 * 26      // 5 digits in base 26
	checksumM  = 1_000_003                   // smallest prime > 1e6, final permutation
	checksumW  = 31                          // digit weight, coprime to p5
)

func generateChecksum(entityID string, ledgerID LedgerID) string {
	h := make([]byte, 0, len(ledgerID)+6)
	h = append(h, ledgerID...)
	h = append(h, make([]byte, 6)...)

	// Digits with 10 for ".", so "0.0.123" becomes [0 10 0 10 1 2 3].
	s := 0  // weighted sum of all positions (mod p3)
	s0 := 0 // sum of even positions (mod 11)
	s1 := 0 // sum of odd positions (mod 11)
	for i := 0; i < len(entityID); i++ {
		d := 10
		if entityID[i] != '.' {
			d = int(entityID[i] - '0')
		}
		s = (checksumW*s + d) % checksumP3
		if i%2 == 0 {
			s0 = (s0 + d) % 11
		} else {
			s1 = (s1 + d) % 11
		}
	}

	sh := 0 // hash of the ledger id
	for _, b := range h {
		sh = (checksumW*sh + int(b)) % checksumP5
	}

	c := ((((len(entityID)%5)*11+s0)*11+s1)*checksumP3 + s + sh) % checksumP5
	c = (c * checksumM) % checksumP5

	var answer [5]byte
	for i := 4; i >= 0; i-- {
		answer[i] = byte('a' + c%26)
		c /= 26
	}

	return string(answer[:])
}
