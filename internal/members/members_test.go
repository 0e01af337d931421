package members

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDirectory(t *testing.T) *Directory {
	t.Helper()

	input := `name
Joanna Whittaker
Arthur Penhaligon
Bram Ravenscroft
Nessa Ravenscroft
`
	d, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	return d
}

func TestResolveSurname(t *testing.T) {
	d := testDirectory(t)

	names := d.Resolve("WHITTAKER J MEMBERSHIP")
	assert.Equal(t, []string{"Joanna Whittaker"}, names)
}

func TestResolveSharedSurname(t *testing.T) {
	d := testDirectory(t)

	names := d.Resolve("RAVENSCROFT B")
	assert.ElementsMatch(t, []string{"Bram Ravenscroft", "Nessa Ravenscroft"}, names)
}

func TestResolveUnknown(t *testing.T) {
	d := testDirectory(t)
	assert.Empty(t, d.Resolve("UNKNOWN SENDER 991"))
}

func TestDisplayName(t *testing.T) {
	d := testDirectory(t)

	assert.Equal(t, "A Penhaligon (Arthur Penhaligon)", d.DisplayName("A Penhaligon"))
	assert.Equal(t, "UNKNOWN SENDER", d.DisplayName("UNKNOWN SENDER"))
}

func TestReadCSVSkipsBlankRows(t *testing.T) {
	d, err := ReadCSV(strings.NewReader("Joanna Whittaker\n\n   \n"))
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len())
}
