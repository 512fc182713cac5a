package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseErrorMessage(t *testing.T) {
	err := MissingFieldsDeclaration("BL01CL~1.CEL")
	assert.Equal(t, "BL01CL~1.CEL: MISSING_FIELDS_DECLARATION: no fields declaration in header", err.Error())

	// No file set - sentinel form.
	assert.Equal(t, "MISSING_END_HEADER: end-of-header sentinel not found", ErrMissingEndHeader.Error())
}

func TestParseErrorIs(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		match  bool
	}{
		{
			name:   "same code different file",
			err:    MissingEndHeader("ES01CL~2.CEL"),
			target: ErrMissingEndHeader,
			match:  true,
		},
		{
			name:   "different code",
			err:    MissingEndHeader("ES01CL~2.CEL"),
			target: ErrMissingFieldsDeclaration,
			match:  false,
		},
		{
			name:   "binary size",
			err:    UnexpectedBinarySize("ESCELL~1.RMA", 32768, 100),
			target: ErrUnexpectedBinarySize,
			match:  true,
		},
		{
			name:   "wrapped still matches",
			err:    fmt.Errorf("parse ESCELL~1.RMA: %w", UnexpectedBinarySize("ESCELL~1.RMA", 32768, 100)),
			target: ErrUnexpectedBinarySize,
			match:  true,
		},
		{
			name:   "unrelated error",
			err:    errors.New("boom"),
			target: ErrMissingEndHeader,
			match:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.match, errors.Is(tt.err, tt.target))
		})
	}
}

func TestUnexpectedBinarySizeDetails(t *testing.T) {
	err := UnexpectedBinarySize("MC2BC0~1.RMA", 32768, 32000)
	require.NotNil(t, err)
	assert.Equal(t, CodeUnexpectedBinarySize, err.Code)
	assert.Contains(t, err.Message, "expected 32768 bytes, got 32000")
}
