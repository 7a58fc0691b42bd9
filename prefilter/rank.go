package prefilter

// commonBytes lists bytes from most to least frequent in typical text and
// source code. Bytes not listed rank as rare.
const commonBytes = " etaoinsrhldcumfpgwyb,.vk-_=\"'()/;:0123456789ETAOINSRHLDCUMFPGWYBVKxjqzXJQZ\n\t{}[]<>*+&|!?#$%@\\^`~"

// byteRanks maps every byte to its frequency rank. Lower rank = rarer byte.
var byteRanks = func() [256]byte {
	var ranks [256]byte
	for i := 0; i < len(commonBytes); i++ {
		ranks[commonBytes[i]] = byte(255 - i)
	}
	return ranks
}()

// selectRareByte returns the rarest byte of needle and its index. Ties go
// to the later byte, which lets verification start further into the needle.
func selectRareByte(needle []byte) (rare byte, index int) {
	if len(needle) == 0 {
		return 0, 0
	}
	rare, index = needle[0], 0
	for i := 1; i < len(needle); i++ {
		if byteRanks[needle[i]] <= byteRanks[rare] {
			rare, index = needle[i], i
		}
	}
	return rare, index
}
