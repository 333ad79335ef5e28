package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName_Empty(t *testing.T) {
	assert.Equal(t, UnknownName, Name(""))
	assert.Equal(t, UnknownName, Name("   "))
}

func TestName_TrimLower(t *testing.T) {
	assert.Equal(t, "chatuchak market", Name("  Chatuchak Market "))
}

func TestName_StripPrefix(t *testing.T) {
	assert.Equal(t, "อรุณ", Name("วัดอรุณ"))
	assert.Equal(t, "arun", Name("Wat Arun"))
	assert.Equal(t, "beach house", Name("The Beach House"))
}

func TestName_StripSuffix(t *testing.T) {
	assert.Equal(t, "siam", Name("Siam Shopping Center"))
	assert.Equal(t, "erawan", Name("Erawan Center"))
}

func TestName_Alias(t *testing.T) {
	assert.Equal(t, "พระบรมมหาราชวัง", Name("Grand Palace"))
	assert.Equal(t, "พระศรีรัตนศาสดาราม", Name("Emerald Buddha Temple"))
	assert.Equal(t, "พระศรีรัตนศาสดาราม", Name("Wat Phra Si Rattana Satsadaram"))
}

func TestName_BangkokQualifier(t *testing.T) {
	assert.Equal(t, "ตลาดนัด", Name("ตลาดนัด กรุงเทพมหานคร"))
	assert.Equal(t, "ตลาดนัด", Name("ตลาดนัด กรุงเทพ"))
}

func TestName_Idempotent(t *testing.T) {
	inputs := []string{
		"Wat Phra Kaew",
		"Grand Palace",
		"  The Riverside Restaurant ",
		"วัดอรุณราชวราราม",
		"",
	}
	for _, in := range inputs {
		once := Name(in)
		assert.Equal(t, once, Name(once), "not idempotent for %q", in)
	}
}

func TestName_CaseInsensitiveDuplicates(t *testing.T) {
	assert.Equal(t, Name("Wat Phra Kaew"), Name("wat phra kaew"))
}

func TestProvince_Alias(t *testing.T) {
	assert.Equal(t, "นครราชสีมา", Province("โคราช"))
	assert.Equal(t, "กรุงเทพมหานคร", Province("กทม"))
	assert.Equal(t, "ชลบุรี", Province("พัทยา"))
}

func TestProvince_Passthrough(t *testing.T) {
	assert.Equal(t, "เชียงราย", Province(" เชียงราย "))
	assert.Equal(t, "Chiang Mai", Province("Chiang Mai"))
}
