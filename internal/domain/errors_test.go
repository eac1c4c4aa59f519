package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"docparse/internal/domain"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.ErrInvalidFileType, "INVALID_FILE_TYPE"},
		{fmt.Errorf("%w: bad kwargs", domain.ErrInvalidOptions), "INVALID_OPTIONS"},
		{domain.ErrMissingFile, "MISSING_FILE"},
		{domain.ErrFileTooLarge, "FILE_TOO_LARGE"},
		{fmt.Errorf("%w: exit status 1", domain.ErrParseFailed), "PARSE_FAILED"},
		{domain.ErrPackagingFailed, "PACKAGING_FAILED"},
		{domain.ErrInitializationFailed, "INITIALIZATION_FAILED"},
		{domain.ErrNotReady, "NOT_READY"},
		{domain.ErrNotFound, "NOT_FOUND"},
		{domain.ErrUnauthorized, "UNAUTHORIZED"},
		{errors.New("boom"), "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.ErrorCode(tt.err), tt.err.Error())
	}
}
