package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "jose-da-silva", Slugify("José da Silva"))
	assert.Equal(t, "jose-da-silva", Slugify("  JOSÉ   DA   SILVA  "))
	assert.Equal(t, "conceicao", Slugify("Conceição"))
	assert.Equal(t, "maria-d-avila", Slugify("Maria D'Ávila"))
	assert.Equal(t, "", Slugify("   "))
}

func TestSlugifyDate(t *testing.T) {
	assert.Equal(t, "20120501", SlugifyDate("2012-05-01"))
	assert.Equal(t, "20120501", SlugifyDate("2012/05/01"))
	assert.Equal(t, "", SlugifyDate(""))
}

func TestComputePersonKey(t *testing.T) {
	key, err := ComputePersonKey("Ana Maria Souza", "2012-05-01", "Joana Souza", "cept-anisio-teixeira")
	require.NoError(t, err)
	assert.Equal(t, "ana-maria-souza_20120501_joana-souza_cept-anisio-teixeira", key)
}

func TestComputePersonKeyDeterministic(t *testing.T) {
	a, err := ComputePersonKey("Ana Maria Souza", "2012-05-01", "Joana Souza", "escola-x")
	require.NoError(t, err)

	// Same person, different casing and accents on resubmission.
	b, err := ComputePersonKey("ANA MARIA SOUZA", "2012-05-01", "JOANA SOUZA", "escola-x")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestComputePersonKeyDistinguishesHomonyms(t *testing.T) {
	a, err := ComputePersonKey("Ana Souza", "2012-05-01", "Joana Souza", "escola-x")
	require.NoError(t, err)
	b, err := ComputePersonKey("Ana Souza", "2013-07-20", "Joana Souza", "escola-x")
	require.NoError(t, err)
	c, err := ComputePersonKey("Ana Souza", "2012-05-01", "Marcia Souza", "escola-x")
	require.NoError(t, err)
	d, err := ComputePersonKey("Ana Souza", "2012-05-01", "Joana Souza", "escola-y")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, d)
}

func TestComputePersonKeyValidation(t *testing.T) {
	_, err := ComputePersonKey("Ana", "2012-05-01", "Joana Souza", "escola-x")
	assert.ErrorIs(t, err, ErrInvalidName)

	// One-letter surname cannot anchor a stable key.
	_, err = ComputePersonKey("Ana B", "2012-05-01", "Joana Souza", "escola-x")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = ComputePersonKey("Ana Souza", "2012-05-01", "Joana Souza", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAge(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	age, ok := Age("2012-05-01", now)
	require.True(t, ok)
	assert.Equal(t, 14, age)

	// Birthday not yet reached this year.
	age, ok = Age("2012-09-15", now)
	require.True(t, ok)
	assert.Equal(t, 13, age)

	_, ok = Age("01/05/2012", now)
	assert.False(t, ok)
	_, ok = Age("", now)
	assert.False(t, ok)
	_, ok = Age("2030-01-01", now)
	assert.False(t, ok)
}

func TestNormalizeText(t *testing.T) {
	// Storage convention keeps accents, lowers case, collapses spaces.
	assert.Equal(t, "josé da silva", NormalizeText("  José   da  Silva "))
	assert.Equal(t, "", NormalizeText("   "))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "José da Silva", DisplayName("josé da silva"))
	assert.Equal(t, "Ana Maria dos Santos e Lima", DisplayName("ana maria dos santos e lima"))
	assert.Equal(t, "Da Silva", DisplayName("da silva"))
}
