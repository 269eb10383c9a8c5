package fingerprint

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

func sampleAttributes() Attributes {
	return Attributes{
		UserAgent:    "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)",
		Language:     "fr-FR",
		Platform:     "iPhone",
		ScreenWidth:  390,
		ScreenHeight: 844,
		ColorDepth:   24,
		Timezone:     "Europe/Paris",
		PixelRatio:   3,
	}
}

func TestCanonical(t *testing.T) {
	attrs := sampleAttributes()
	assert.Equal(t,
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)||fr-FR||iPhone||390||844||24||Europe/Paris||3",
		attrs.Canonical())

	attrs.PixelRatio = 2.625
	assert.Contains(t, attrs.Canonical(), "||2.625")
}

func TestCompute(t *testing.T) {
	attrs := sampleAttributes()

	t.Run("stable for identical attributes", func(t *testing.T) {
		first := Compute(attrs)
		second := Compute(attrs)
		assert.Equal(t, first, second)
		assert.Regexp(t, hexDigest, first)
	})

	t.Run("any attribute change alters the fingerprint", func(t *testing.T) {
		base := Compute(attrs)
		changed := attrs
		changed.Timezone = "America/New_York"
		assert.NotEqual(t, base, Compute(changed))

		changed = attrs
		changed.ScreenWidth++
		assert.NotEqual(t, base, Compute(changed))
	})

	t.Run("matches sha256 of canonical string", func(t *testing.T) {
		want, err := SHA256Hex([]byte(attrs.Canonical()))
		require.NoError(t, err)
		assert.Equal(t, want, Compute(attrs))
	})
}

func TestComputeFallback(t *testing.T) {
	gen := NewGenerator(func([]byte) (string, error) {
		return "", errors.New("subtle crypto missing")
	})

	first := gen.Compute(sampleAttributes())
	second := gen.Compute(sampleAttributes())

	assert.Len(t, first, fallbackBytes*2)
	assert.NotRegexp(t, hexDigest, first)
	assert.NotEqual(t, first, second, "回退值不应稳定")
}
