package values

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// digestHexLen is the hex length of a SHA3-256 digest (32 bytes).
const digestHexLen = 64

// digestPrefix is the canonical prefix for encoded digests.
const digestPrefix = "0x"

const hexDigits = "0123456789abcdef"

// Digest is a SHA3-256 content hash in canonical form:
// "0x" followed by 64 lowercase hex characters.
type Digest struct {
	value string
}

// Compute hashes data with SHA3-256 and returns the canonical digest.
// Deterministic and total: every input, including empty, has a digest.
func Compute(data []byte) Digest {
	sum := sha3.Sum256(data)
	buf := make([]byte, 0, len(digestPrefix)+digestHexLen)
	buf = append(buf, digestPrefix...)
	for _, b := range sum {
		buf = append(buf, hexDigits[b>>4], hexDigits[b&0x0f])
	}
	return Digest{value: string(buf)}
}

// ParseDigest validates s as a canonical digest string.
// Uppercase hex is rejected rather than folded, so parsed digests
// compare by plain string equality.
func ParseDigest(s string) (Digest, error) {
	if !strings.HasPrefix(s, digestPrefix) {
		return Digest{}, fmt.Errorf("digest missing %q prefix: %q", digestPrefix, s)
	}
	hexPart := s[len(digestPrefix):]
	if len(hexPart) != digestHexLen {
		return Digest{}, fmt.Errorf("digest must be %d hex characters, got %d", digestHexLen, len(hexPart))
	}
	for i := 0; i < len(hexPart); i++ {
		c := hexPart[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return Digest{}, fmt.Errorf("digest contains non-lowercase-hex character %q at offset %d", c, i)
		}
	}
	return Digest{value: s}, nil
}

// String returns the canonical "0x"-prefixed digest string.
func (d Digest) String() string {
	return d.value
}

// Hex returns the hex portion without the "0x" prefix.
func (d Digest) Hex() string {
	return strings.TrimPrefix(d.value, digestPrefix)
}

// IsZero reports whether the digest is the zero value (unset).
func (d Digest) IsZero() bool {
	return d.value == ""
}

// Equals checks equality with another digest.
func (d Digest) Equals(other Digest) bool {
	return d.value == other.value
}

// Verify validates data matches this digest.
func (d Digest) Verify(data []byte) error {
	computed := Compute(data)
	if !d.Equals(computed) {
		return fmt.Errorf("digest mismatch: expected %s, got %s", d.String(), computed.String())
	}
	return nil
}

// Short returns a truncated digest for log output.
func (d Digest) Short() string {
	if len(d.value) <= 18 {
		return d.value
	}
	return d.value[:18]
}
