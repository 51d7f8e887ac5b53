package errcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	assert.Empty(t, Message(OK))
	assert.Equal(t, "PDF generation failed", Message(PDFGenerationFailed))
	assert.Equal(t, "internal error", Message(SystemError))
	assert.Equal(t, "internal error", Message(1234))
}
