package person

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBMI(t *testing.T) {
	// Height in meters with comma decimals, as typed on the form.
	assert.Equal(t, "20,8", ComputeBMI("30", "1,20"))
	// Height in centimeters is recognized and converted.
	assert.Equal(t, "20,8", ComputeBMI("30", "120"))
	assert.Equal(t, "23,0", ComputeBMI("70,5", "1.75"))
}

func TestComputeBMIInvalidInput(t *testing.T) {
	assert.Equal(t, "", ComputeBMI("", "1,20"))
	assert.Equal(t, "", ComputeBMI("30", ""))
	assert.Equal(t, "", ComputeBMI("trinta", "1,20"))
	assert.Equal(t, "", ComputeBMI("0", "1,20"))
	assert.Equal(t, "", ComputeBMI("-5", "1,20"))
	assert.Equal(t, "", ComputeBMI("30", "0"))
}
