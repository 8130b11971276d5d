package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "+16502530000", Normalize(" +1 650-253-0000 ", "AR"))
	assert.Equal(t, "+16502530000", Normalize("(650) 253-0000", "us"))
	assert.Equal(t, "000-000", Normalize(" 000-000 ", "AR"))
	assert.Equal(t, "", Normalize("   ", "AR"))
}
