package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenFormatsThousandsAndTwoDecimals(t *testing.T) {
	require.Equal(t, "123,456,789.12", Token(123456789.1234))
}

func TestUSDFormatsThousandsAndTwoDecimals(t *testing.T) {
	require.Equal(t, "$123,456,789.12", USD(123456789.1234))
}
